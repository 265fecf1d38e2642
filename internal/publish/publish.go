// Package publish uploads a built output tree to S3-compatible object storage.
package publish

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/TotalLag/developer-docs/internal/config"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/logfields"
)

const defaultConcurrency = 8

// Uploader is the subset of *s3.Client used for publishing.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher copies every file under an output directory to a bucket.
type Publisher struct {
	cfg         config.PublishConfig
	client      Uploader
	logger      *slog.Logger
	concurrency int
}

type Option func(*Publisher)

// WithUploader replaces the S3 client.
func WithUploader(u Uploader) Option { return func(p *Publisher) { p.client = u } }

func WithLogger(l *slog.Logger) Option { return func(p *Publisher) { p.logger = l } }

func WithConcurrency(n int) Option { return func(p *Publisher) { p.concurrency = n } }

// New validates cfg and builds an S3 client unless WithUploader is given.
// Without configured keys the standard AWS_* environment variables are used.
func New(cfg config.PublishConfig, opts ...Option) (*Publisher, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, foundation.ConfigError("publish bucket is required").
			WithContext("field", "publish.bucket").Build()
	}
	p := &Publisher{cfg: cfg, logger: slog.Default(), concurrency: defaultConcurrency}
	for _, o := range opts {
		o(p)
	}
	if p.concurrency <= 0 {
		p.concurrency = defaultConcurrency
	}
	if p.client == nil {
		p.client = newS3Client(cfg)
	}
	return p, nil
}

func newS3Client(cfg config.PublishConfig) *s3.Client {
	access, secret, token := cfg.AccessKey, cfg.SecretKey, ""
	if access == "" {
		access = os.Getenv("AWS_ACCESS_KEY_ID")
		secret = os.Getenv("AWS_SECRET_ACCESS_KEY")
		token = os.Getenv("AWS_SESSION_TOKEN")
	}
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = region
			if access != "" {
				o.Credentials = credentials.NewStaticCredentialsProvider(access, secret, token)
			}
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}
	return s3.New(s3.Options{}, opts...)
}

// Result summarizes an upload.
type Result struct {
	Objects int
	Bytes   int64
}

// Publish uploads every regular file under dir. Keys are slash-separated paths
// relative to dir, under the configured prefix. The first failure cancels the
// remaining uploads.
func (p *Publisher) Publish(ctx context.Context, dir string) (Result, error) {
	files, err := listFiles(dir)
	if err != nil {
		return Result{}, err
	}

	var objects, bytes atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, rel := range files {
		g.Go(func() error {
			n, err := p.upload(gctx, dir, rel)
			if err != nil {
				return err
			}
			objects.Add(1)
			bytes.Add(n)
			return nil
		})
	}
	err = g.Wait()
	res := Result{Objects: int(objects.Load()), Bytes: bytes.Load()}
	if err != nil {
		return res, err
	}
	p.logger.Info("Published site",
		slog.String("bucket", p.cfg.Bucket),
		slog.Int("objects", res.Objects),
		slog.Int64("bytes", res.Bytes))
	return res, nil
}

func (p *Publisher) upload(ctx context.Context, dir, rel string) (int64, error) {
	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return 0, foundation.FileSystemError("open output file").WithCause(err).WithContext("path", rel).Build()
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil {
		return 0, foundation.FileSystemError("stat output file").WithCause(err).WithContext("path", rel).Build()
	}

	key := p.Key(rel)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.cfg.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(fi.Size()),
		ContentType:   aws.String(ContentType(rel)),
	})
	if err != nil {
		return 0, foundation.PublishError("upload failed").
			WithCause(err).
			WithContext("bucket", p.cfg.Bucket).
			WithContext("key", key).
			Build()
	}
	p.logger.Debug("Uploaded object", logfields.Path(rel), slog.String("key", key))
	return fi.Size(), nil
}

// Key maps a relative output path to an object key.
func (p *Publisher) Key(rel string) string {
	prefix := strings.Trim(p.cfg.Prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// ContentType picks a MIME type by extension, defaulting to octet-stream.
func ContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, foundation.FileSystemError("list output directory").WithCause(err).WithContext("path", dir).Build()
	}
	return files, nil
}
