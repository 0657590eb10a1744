package storage

import (
	"bytes"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/nicolagi/goldendiff/internal/config"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type s3Store struct {
	client *s3.S3
	bucket string
}

var _ Enumerable = (*s3Store)(nil)

func newS3Store(c *config.C) (Store, error) {
	const method = "newS3Store"
	const maxRetries = 8
	if c.S3Bucket == "" {
		return nil, errorf(method, "no bucket configured")
	}
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(c.S3Region),
		Credentials: credentials.NewSharedCredentials("", c.S3Profile),
		MaxRetries:  aws.Int(maxRetries),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &s3Store{
		client: s3.New(sess),
		bucket: c.S3Bucket,
	}, nil
}

func (s *s3Store) Get(key Key) (contents Value, err error) {
	if err := key.Check(); err != nil {
		return nil, err
	}
	output, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(string(key)),
	})
	if err != nil {
		if rfErr, ok := err.(awserr.RequestFailure); ok {
			if rfErr.StatusCode() == http.StatusNotFound {
				return nil, errors.Wrapf(ErrNotFound, "key=%q err=%+v", key, err)
			}
		}
		return nil, errors.WithStack(err)
	}
	defer func() {
		if err := output.Body.Close(); err != nil {
			log.WithField("key", key).Warningf("Could not close response body: %v", err)
		}
	}()
	return io.ReadAll(output.Body)
}

func (s *s3Store) Put(key Key, value Value) error {
	if err := key.Check(); err != nil {
		return err
	}
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(string(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	return errors.WithStack(err)
}

func (s *s3Store) Delete(key Key) error {
	if err := key.Check(); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(string(key)),
	})
	return errors.WithStack(err)
}

func (s *s3Store) ForEach(cb func(Key) error) error {
	var cbErr error
	err := s.client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, o := range page.Contents {
			if cbErr = cb(Key(aws.StringValue(o.Key))); cbErr != nil {
				return false
			}
		}
		return true
	})
	if cbErr != nil {
		return cbErr
	}
	return errors.WithStack(err)
}
