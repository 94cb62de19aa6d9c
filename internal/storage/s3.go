// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the settings for an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string // key prefix inside the bucket, e.g. "images"
	PublicURL string // optional CDN/direct URL for public files
}

// S3 stores images in an S3-compatible bucket using path-style addressing
// (required by CEPH/Hetzner and MinIO).
type S3 struct {
	s3        *s3.Client
	bucket    string
	prefix    string
	endpoint  string
	publicURL string
}

// NewS3 creates an S3 backend with static credentials. Returns an error
// if endpoint, credentials, or bucket are missing.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 storage: endpoint, credentials and bucket are required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	return &S3{
		s3:        client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func (c *S3) key(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	if c.prefix == "" {
		return name, nil
	}
	return c.prefix + "/" + name, nil
}

// Put uploads the object with a public-read ACL so it can be served directly.
func (c *S3) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) error {
	key, err := c.key(name)
	if err != nil {
		return err
	}
	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// Open streams the object body.
func (c *S3) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	key, err := c.key(name)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("s3 download %s/%s: %w", c.bucket, key, err)
	}
	info := ObjectInfo{
		Name:        name,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		ModTime:     aws.ToTime(out.LastModified),
	}
	return out.Body, info, nil
}

// Delete removes the object. S3 deletes are idempotent, so existence is
// checked first to report ErrNotFound.
func (c *S3) Delete(ctx context.Context, name string) error {
	key, err := c.key(name)
	if err != nil {
		return err
	}
	_, err = c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("s3 head %s/%s: %w", c.bucket, key, err)
	}

	_, err = c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// List returns every object directly under the prefix.
func (c *S3) List(ctx context.Context) ([]ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(c.bucket)}
	if c.prefix != "" {
		input.Prefix = aws.String(c.prefix + "/")
	}

	var out []ObjectInfo
	p := s3.NewListObjectsV2Paginator(c.s3, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", c.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := path.Base(key)
			if c.prefix != "" && key != c.prefix+"/"+name {
				continue // nested deeper than the prefix
			}
			out = append(out, ObjectInfo{
				Name:    name,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return out, nil
}

// URL returns the public URL for an object.
// Uses the configured public URL if set, otherwise builds a path-style URL.
func (c *S3) URL(name string) string {
	key, err := c.key(name)
	if err != nil {
		return ""
	}
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// Ping checks that the bucket is reachable.
func (c *S3) Ping(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return fmt.Errorf("s3 head bucket %s: %w", c.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
