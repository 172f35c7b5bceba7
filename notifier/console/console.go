package console

import (
	"fmt"

	"github.com/liweiyi88/pgbackup/jobresult"
)

type Console struct{}

func New() *Console {
	return &Console{}
}

func (console *Console) Notify(result *jobresult.RunResult) error {
	fmt.Println(result.String())
	return nil
}
