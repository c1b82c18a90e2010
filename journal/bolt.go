// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package journal

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/fxamacker/cbor/v2"
	bbolt "go.etcd.io/bbolt"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/exo/errors"
)

const (
	boltFileMode   os.FileMode = 0o600
	boltBucketName             = "entries"
)

var (
	cborEncOpts = cbor.EncOptions{
		Sort:        cbor.SortCoreDeterministic,
		IndefLength: cbor.IndefLengthForbidden,
	}
	cborDecOpts = cbor.DecOptions{
		MaxNestedLevels: 16,
		IndefLength:     cbor.IndefLengthForbidden,
	}
)

// Bolt is a Journal persisted in a bbolt database.
//
// Keys are the big-endian tick, the actor id, a zero byte and the big-endian
// sequence number, so a cursor walks the bucket in canonical order.
type Bolt struct {
	db       *bbolt.DB
	bucket   []byte
	path     string
	closed   *atomic.Bool
	encoding cbor.EncMode
	decoding cbor.DecMode
}

var _ Journal = (*Bolt)(nil)

// NewBolt opens (or creates) the bbolt database at path. Opening is retried
// when the file is locked by another process.
func NewBolt(ctx context.Context, path string, opts ...Option) (*Bolt, error) {
	config := newBoltConfig()
	for _, opt := range opts {
		opt.Apply(config)
	}

	encoding, err := cborEncOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("journal: cbor encoding: %w", err)
	}
	decoding, err := cborDecOpts.DecMode()
	if err != nil {
		return nil, fmt.Errorf("journal: cbor decoding: %w", err)
	}

	var db *bbolt.DB
	retrier := retry.NewRetrier(config.openRetries, config.retryDelay, config.openTimeout)
	if err := retrier.RunContext(ctx, func(_ context.Context) error {
		var err error
		db, err = bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: config.openTimeout, NoGrowSync: config.noGrowSync})
		return err
	}); err != nil {
		return nil, fmt.Errorf("journal: opening boltdb: %w", err)
	}

	bucket := []byte(boltBucketName)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucket)
		return e
	}); err != nil {
		return nil, multierr.Combine(fmt.Errorf("journal: initializing boltdb bucket: %w", err), db.Close())
	}

	return &Bolt{
		db:       db,
		bucket:   bucket,
		path:     path,
		closed:   atomic.NewBool(false),
		encoding: encoding,
		decoding: decoding,
	}, nil
}

// Append records an entry
func (b *Bolt) Append(ctx context.Context, entry Entry) error {
	if b.closed.Load() {
		return gerrors.ErrJournalClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := b.encoding.Marshal(entry)
	if err != nil {
		return fmt.Errorf("journal: encoding entry: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return fmt.Errorf("journal: bucket %q missing", b.bucket)
		}
		return bucket.Put(entryKey(entry), data)
	})
}

// Entries returns every recorded entry in canonical order
func (b *Bolt) Entries(ctx context.Context) ([]Entry, error) {
	if b.closed.Load() {
		return nil, gerrors.ErrJournalClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []Entry
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return fmt.Errorf("journal: bucket %q missing", b.bucket)
		}
		entries = make([]Entry, 0, bucket.Stats().KeyN)
		return bucket.ForEach(func(_, value []byte) error {
			var entry Entry
			if err := b.decoding.Unmarshal(value, &entry); err != nil {
				return fmt.Errorf("journal: decoding entry: %w", err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Path returns the database file path
func (b *Bolt) Path() string {
	return b.path
}

// Close releases the underlying database handle. The file is kept.
func (b *Bolt) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}

func entryKey(entry Entry) []byte {
	key := make([]byte, 0, 8+len(entry.ActorID)+1+8)
	key = binary.BigEndian.AppendUint64(key, entry.Tick)
	key = append(key, entry.ActorID...)
	key = append(key, 0)
	return binary.BigEndian.AppendUint64(key, entry.Seq)
}

type boltConfig struct {
	openRetries int
	openTimeout time.Duration
	retryDelay  time.Duration
	noGrowSync  bool
}

func newBoltConfig() *boltConfig {
	return &boltConfig{
		openRetries: 3,
		openTimeout: time.Second,
		retryDelay:  50 * time.Millisecond,
	}
}
