package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Config — настройки подключения к S3-совместимому хранилищу.
type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string // пусто — AWS
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	ACL            string // например public-read; пусто — ACL не передаётся
}

// S3Store реализует BlobStore поверх aws-sdk-go.
type S3Store struct {
	client   s3iface.S3API
	uploader *s3manager.Uploader
	bucket   string
	acl      string
}

// NewS3Store создаёт клиента. Повторы запросов в SDK отключены: ошибка сразу уходит вызывающему.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: empty bucket name")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
		MaxRetries:       aws.Int(0),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3: new session: %w", err)
	}

	client := s3.New(sess)
	return &S3Store{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		bucket:   cfg.Bucket,
		acl:      cfg.ACL,
	}, nil
}

// Put загружает объект и возвращает его Location.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	in := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if s.acl != "" {
		in.ACL = aws.String(s.acl)
	}

	out, err := s.uploader.UploadWithContext(ctx, in)
	if err != nil {
		return "", fmt.Errorf("%w: upload %q: %v", ErrStoreUnavailable, key, err)
	}
	return out.Location, nil
}

// Delete удаляет объект по ключу.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %q: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}
