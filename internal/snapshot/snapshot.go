// Package snapshot captures a whole schema as a JSON object graph plus its
// creation script and keeps both in object storage.
//
// A snapshot at key K is stored as two objects:
//
//	K/schema.json   the tables, as schema.Table JSON
//	K/schema.sql    the CREATE script for the same tables
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/filestore"
	"github.com/koustreak/dbscribe/internal/logger"
	"github.com/koustreak/dbscribe/internal/schema"
	"github.com/koustreak/dbscribe/internal/script"
)

const (
	jsonObject = "schema.json"
	ddlObject  = "schema.sql"
)

// Snapshot is one captured schema.
type Snapshot struct {
	ID      string          `json:"id"`
	Backend string          `json:"backend"`
	Schema  string          `json:"schema"`
	TakenAt time.Time       `json:"takenAt"`
	Tables  []*schema.Table `json:"tables"`

	// DDL is stored next to the JSON, not inside it.
	DDL string `json:"-"`
}

// Inspector is the part of introspect.Introspector a snapshot needs.
type Inspector interface {
	Profile() *dialect.Profile
	InspectSchema(ctx context.Context, schemaName string) ([]*schema.Table, error)
}

// Result reports where a snapshot was written.
type Result struct {
	ID      string                 `json:"id"`
	Bucket  string                 `json:"bucket"`
	Objects []filestore.ObjectInfo `json:"objects"`

	// URL is a presigned download link for the JSON object, when requested.
	URL string `json:"url,omitempty"`
}

// Service takes, stores and loads snapshots.
type Service struct {
	store filestore.Store
	log   *logger.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Service writing to store.
func New(store filestore.Store, opts ...Option) *Service {
	s := &Service{store: store, log: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take inspects every table of schemaName, in dependency order, and renders
// the matching creation script. Structural problems found by
// schema.Table.Validate are logged, not fatal.
func (s *Service) Take(ctx context.Context, in Inspector, schemaName string) (*Snapshot, error) {
	profile := in.Profile()
	if schemaName == "" {
		schemaName = profile.Dialect.DefaultSchema
	}

	tables, err := in.InspectSchema(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if verr := t.Validate(); verr != nil {
			s.log.ErrorWith("table failed validation", verr, map[string]any{"table": t.Name})
		}
	}

	ddl := script.New(profile.Dialect, script.WithSchema(schemaName), script.WithDefaults()).
		BuildCreateSchemaScript(tables, true)

	return &Snapshot{
		ID:      uuid.NewString(),
		Backend: profile.Name(),
		Schema:  schemaName,
		TakenAt: s.now().UTC(),
		Tables:  tables,
		DDL:     ddl,
	}, nil
}

// Save writes snap under key in bucket, creating the bucket if needed. A
// positive presign adds a download URL for the JSON object.
func (s *Service) Save(ctx context.Context, bucket, key string, snap *Snapshot, presign time.Duration) (*Result, error) {
	if bucket == "" {
		return nil, errs.InvalidArgument("bucket")
	}
	key = strings.Trim(key, "/")
	if key == "" {
		return nil, errs.InvalidArgument("key")
	}
	if snap == nil {
		return nil, errs.InvalidArgument("snapshot")
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.store.EnsureBucket(ctx, bucket); err != nil {
		return nil, err
	}

	meta := map[string]string{"snapshot-id": snap.ID, "backend": snap.Backend, "schema": snap.Schema}
	res := &Result{ID: snap.ID, Bucket: bucket}

	for _, obj := range []struct {
		name, contentType string
		data              []byte
	}{
		{jsonObject, "application/json", body},
		{ddlObject, "application/sql", []byte(snap.DDL)},
	} {
		info, err := s.store.PutObject(ctx, bucket, objectKey(key, obj.name), bytes.NewReader(obj.data), int64(len(obj.data)),
			filestore.PutOptions{ContentType: obj.contentType, Metadata: meta})
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", obj.name, err)
		}
		res.Objects = append(res.Objects, *info)
	}

	if presign > 0 {
		url, err := s.store.PresignGetURL(ctx, bucket, objectKey(key, jsonObject), presign)
		if err != nil {
			return nil, err
		}
		res.URL = url
	}

	s.log.InfoWith("snapshot saved", map[string]any{
		"id":     snap.ID,
		"bucket": bucket,
		"key":    key,
		"tables": len(snap.Tables),
	})
	return res, nil
}

// Load reads the snapshot stored under key.
func (s *Service) Load(ctx context.Context, bucket, key string) (*Snapshot, error) {
	key = strings.Trim(key, "/")
	if bucket == "" {
		return nil, errs.InvalidArgument("bucket")
	}
	if key == "" {
		return nil, errs.InvalidArgument("key")
	}

	raw, err := s.read(ctx, bucket, objectKey(key, jsonObject))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("snapshot %q is not valid JSON", key), err)
	}

	ddl, err := s.read(ctx, bucket, objectKey(key, ddlObject))
	if err != nil {
		return nil, err
	}
	snap.DDL = string(ddl)
	return &snap, nil
}

// List returns the keys of the snapshots stored under prefix, in the
// order the store lists them.
func (s *Service) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if bucket == "" {
		return nil, errs.InvalidArgument("bucket")
	}
	objects, err := s.store.ListObjects(ctx, bucket, filestore.ListOptions{Prefix: prefix, Recursive: true})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		if k, ok := strings.CutSuffix(o.Key, "/"+jsonObject); ok && !o.IsDir {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *Service) read(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, fmt.Sprintf("failed to read %s", key), err)
	}
	return data, nil
}

func objectKey(key, name string) string {
	return key + "/" + name
}
