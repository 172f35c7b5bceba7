package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/liweiyi88/pgbackup/jobresult"
)

type Slack struct {
	IncomingWebhook string `yaml:"incomingwebhook"`
}

type SlackMessage struct {
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Type string `json:"type"`
	Text Text   `json:"text"`
}

type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (slack *Slack) Notify(result *jobresult.RunResult) error {
	if result == nil {
		return nil
	}

	blocks := []Block{
		{
			Type: "section",
			Text: Text{Type: "mrkdwn", Text: "*pgbackup result*"},
		},
		{
			Type: "section",
			Text: Text{Type: "mrkdwn", Text: result.ToSlackText()},
		},
	}

	message := SlackMessage{
		Blocks: blocks,
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message, err: %v", err)
	}

	client := &http.Client{}
	res, err := client.Post(slack.IncomingWebhook, "application/json", bytes.NewReader(data))

	if err != nil {
		return fmt.Errorf("slack notification failed: %v", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)

		return fmt.Errorf("slack notification failed: %v", string(body))
	}

	return nil
}
