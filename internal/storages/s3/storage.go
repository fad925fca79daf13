// Copyright 2024 The Dokuly Datatable Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package s3

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/internal/storages"
)

const (
	awsErrorCodeNotFound  = "NotFound"
	awsErrorCodeNoSuchKey = "NoSuchKey"
)

// Storage keeps exports and layouts as objects below a bucket prefix.
type Storage struct {
	bucket       string
	storageClass string
	prefix       string
	service      s3iface.S3API
	uploader     s3manageriface.UploaderAPI
}

func NewStorage(ctx context.Context, cfg *Config, logLevel string) (*Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid s3 storage config: %w", err)
	}
	ses, err := session.NewSession(awsConfig(cfg, logLevel))
	if err != nil {
		return nil, fmt.Errorf("cannot establish session: %w", err)
	}
	creds, err := staticCredentials(ctx, ses, cfg)
	if err != nil {
		return nil, err
	}
	var extra []*aws.Config
	if creds != nil {
		extra = append(extra, aws.NewConfig().WithCredentials(creds))
	}

	service := s3.New(ses, extra...)
	uploader := s3manager.NewUploaderWithClient(service, func(u *s3manager.Uploader) {
		u.PartSize = cfg.MaxPartSize
		u.Concurrency = cfg.Concurrency
	})
	st := newStorage(cfg, service, uploader)
	log.Debug().
		Str("Region", aws.StringValue(service.Config.Region)).
		Str("Location", st.Location()).
		Msg("s3 export storage")
	return st, nil
}

func awsConfig(cfg *Config, logLevel string) *aws.Config {
	awsCfg := aws.NewConfig().
		WithS3ForcePathStyle(cfg.ForcePathStyle).
		WithDisableSSL(cfg.DisableSSL).
		WithLogger(LogWrapper{logger: &log.Logger}).
		WithLogLevel(aws.LogOff)
	request.WithRetryer(awsCfg, client.DefaultRetryer{NumMaxRetries: cfg.MaxRetries})
	if logLevel == zerolog.LevelDebugValue {
		awsCfg.WithLogLevel(aws.LogDebug | aws.LogDebugWithRequestErrors | aws.LogDebugWithRequestRetries)
	}
	if cfg.NoVerifySsl {
		awsCfg.WithHTTPClient(&http.Client{Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}})
	}
	if cfg.Endpoint != "" {
		awsCfg.WithEndpoint(cfg.Endpoint)
	}
	if cfg.Region != "" {
		awsCfg.WithRegion(cfg.Region)
	}
	return awsCfg
}

// staticCredentials returns the configured keys, exchanged for a session of RoleArn when set.
// Nil leaves the default provider chain in place.
func staticCredentials(ctx context.Context, ses *session.Session, cfg *Config) (*credentials.Credentials, error) {
	value := credentials.Value{
		AccessKeyID:     cfg.AccessKeyId,
		SecretAccessKey: cfg.SecretAccessKey,
		SessionToken:    cfg.SessionToken,
	}
	if cfg.RoleArn != "" {
		role, err := sts.New(ses).AssumeRoleWithContext(ctx, &sts.AssumeRoleInput{
			RoleArn:         aws.String(cfg.RoleArn),
			RoleSessionName: aws.String(cfg.SessionName),
		})
		if err != nil {
			return nil, fmt.Errorf("cannot assume role %s: %w", cfg.RoleArn, err)
		}
		value = credentials.Value{
			AccessKeyID:     aws.StringValue(role.Credentials.AccessKeyId),
			SecretAccessKey: aws.StringValue(role.Credentials.SecretAccessKey),
			SessionToken:    aws.StringValue(role.Credentials.SessionToken),
		}
	}
	if value.AccessKeyID == "" || value.SecretAccessKey == "" {
		return nil, nil
	}
	return credentials.NewStaticCredentialsFromCreds(value), nil
}

func newStorage(cfg *Config, service s3iface.S3API, uploader s3manageriface.UploaderAPI) *Storage {
	return &Storage{
		bucket:       cfg.Bucket,
		storageClass: cfg.StorageClass,
		prefix:       strings.Trim(cfg.Prefix, "/"),
		service:      service,
		uploader:     uploader,
	}
}

func (s *Storage) objectKey(key string) (string, error) {
	k, err := storages.CleanKey(key)
	if err != nil {
		return "", err
	}
	return path.Join(s.prefix, k), nil
}

func (s *Storage) Location() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

func (s *Storage) Sub(prefix string) storages.Storager {
	sub := *s
	if k, err := storages.CleanKey(prefix); err == nil {
		sub.prefix = path.Join(s.prefix, k)
	}
	return &sub
}

func (s *Storage) List(ctx context.Context, prefix string) ([]storages.Object, error) {
	listPrefix := ""
	if s.prefix != "" {
		listPrefix = s.prefix + "/"
	}
	if p := strings.Trim(prefix, "/"); p != "" {
		k, err := s.objectKey(p)
		if err != nil {
			return nil, err
		}
		listPrefix = k + "/"
	}

	var res []storages.Object
	err := s.service.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(listPrefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, o := range page.Contents {
			key := strings.TrimPrefix(aws.StringValue(o.Key), s.prefix)
			key = strings.TrimPrefix(key, "/")
			res = append(res, storages.Object{
				Key:          key,
				Size:         aws.Int64Value(o.Size),
				LastModified: aws.TimeValue(o.LastModified),
				ContentType:  storages.ContentType(key),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", listPrefix, err)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Key < res[j].Key
	})
	return res, nil
}

func (s *Storage) Stat(ctx context.Context, key string) (*storages.Object, error) {
	k, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.service.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return nil, mapError(key, err)
	}
	ct := aws.StringValue(out.ContentType)
	if ct == "" {
		ct = storages.ContentType(key)
	}
	clean, _ := storages.CleanKey(key)
	return &storages.Object{
		Key:          clean,
		Size:         aws.Int64Value(out.ContentLength),
		LastModified: aws.TimeValue(out.LastModified),
		ContentType:  ct,
	}, nil
}

func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.service.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return nil, mapError(key, err)
	}
	return out.Body, nil
}

// Put uploads an export or layout with its media type and a download file name. The
// uploader aborts multipart uploads on failure, so no partial object is left behind.
func (s *Storage) Put(ctx context.Context, key string, body io.Reader) error {
	k, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(k),
		Body:               body,
		ContentType:        aws.String(storages.ContentType(key)),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", path.Base(k))),
		StorageClass:       aws.String(s.storageClass),
	})
	if err != nil {
		return fmt.Errorf("cannot upload %s: %w", key, err)
	}
	return nil
}

// Remove deletes the object. S3 deletes are idempotent, so the key is checked first.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if _, err := s.Stat(ctx, key); err != nil {
		return err
	}
	k, _ := s.objectKey(key)
	_, err := s.service.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return fmt.Errorf("cannot delete %s: %w", key, err)
	}
	return nil
}

func mapError(key string, err error) error {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) &&
		(awsErr.Code() == awsErrorCodeNotFound || awsErr.Code() == awsErrorCodeNoSuchKey) {
		return fmt.Errorf("%w: %s", storages.ErrObjectNotFound, key)
	}
	return fmt.Errorf("cannot read %s: %w", key, err)
}
