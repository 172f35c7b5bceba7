package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3 struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	AccessKeyId     string `yaml:"access-key-id"`
	SecretAccessKey string `yaml:"secret-access-key"`
}

func NewS3(bucket, prefix, region, accessKeyId, secretAccessKey string) *S3 {
	return &S3{
		Bucket:          bucket,
		Prefix:          prefix,
		Region:          region,
		AccessKeyId:     accessKeyId,
		SecretAccessKey: secretAccessKey,
	}
}

func (s3 *S3) objectKey(filename string) string {
	return path.Join(strings.Trim(s3.Prefix, "/"), filename)
}

func (s3 *S3) createUploader(ctx context.Context) (*manager.Uploader, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if s3.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s3.Region))
	}

	if s3.AccessKeyId != "" && s3.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3.AccessKeyId, s3.SecretAccessKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("fail to load AWS config, error: %v", err)
	}

	return manager.NewUploader(awss3.NewFromConfig(cfg)), nil
}

func (s3 *S3) Save(reader io.Reader, filename string) error {
	ctx := context.Background()

	uploader, err := s3.createUploader(ctx)
	if err != nil {
		return err
	}

	_, err = uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s3.Bucket),
		Key:    aws.String(s3.objectKey(filename)),
		Body:   reader,
	})

	if err != nil {
		return fmt.Errorf("fail to upload archive to s3 bucket %s, error: %w", s3.Bucket, err)
	}

	return nil
}
