// Package history records completed encryptions in a BoltDB file.
package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
)

var (
	bucketEntries = []byte("entries")
)

type Config struct {
	File string `yaml:"file"`
}

var db *bbolt.DB

func Open(config Config) {
	if db != nil {
		panic("history: already opened")
	}
	if config.File == "" {
		panic("history: file is required")
	}

	err := os.MkdirAll(filepath.Dir(config.File), 0755)
	if err != nil {
		panic(fmt.Errorf("history: create db dir: %w", err))
	}

	db, err = bbolt.Open(config.File, 0600, &bbolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		panic(fmt.Errorf("history: open bbolt db: %w", err))
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		if err != nil {
			return fmt.Errorf("create bucket %q: %w", bucketEntries, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		db = nil
		panic(fmt.Errorf("history: initialize buckets: %w", err))
	}
}

// Opened reports whether the history db is open.
func Opened() bool {
	return db != nil
}

func Close() error {
	if db == nil {
		panic("history: not opened")
	}

	err := db.Close()
	if err != nil {
		return fmt.Errorf("history: close bbolt db: %w", err)
	}
	db = nil
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

func Closer() io.Closer {
	return closerFunc(Close)
}

type Entry struct {
	Mode       string    `json:"mode"`
	Text       string    `json:"text"`
	CipherText string    `json:"cipher_text"`
	Key        string    `json:"key"`
	Created    time.Time `json:"created"`
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Errorf("history: must: %w", err))
	}
	return v
}

func seqKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, seq)
}

// Add appends an entry and returns its sequence number.
func Add(entry Entry) (uint64, error) {
	if db == nil {
		panic("history: not opened")
	}

	var seq uint64
	err := db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return fmt.Errorf("history: entries bucket not found")
		}

		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return fmt.Errorf("history: next sequence: %w", err)
		}

		return b.Put(seqKey(seq), must(json.Marshal(entry)))
	})
	return seq, err
}

// Clear removes all entries. Sequence numbers restart at 1.
func Clear() error {
	if db == nil {
		panic("history: not opened")
	}

	return db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil {
			return fmt.Errorf("history: delete entries bucket: %w", err)
		}
		_, err := tx.CreateBucket(bucketEntries)
		return err
	})
}

var errStop = fmt.Errorf("stop iteration")

// All iterates entries in insertion order.
func All() iter.Seq2[uint64, Entry] {
	if db == nil {
		panic("history: not opened")
	}

	return func(yield func(uint64, Entry) bool) {
		err := db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketEntries)
			if b == nil {
				return fmt.Errorf("history: entries bucket not found")
			}

			return b.ForEach(func(k, v []byte) error {
				var entry Entry
				err := json.Unmarshal(v, &entry)
				if err != nil {
					return fmt.Errorf("history: unmarshal entry %x: %w", k, err)
				}

				if !yield(binary.BigEndian.Uint64(k), entry) {
					return errStop
				}
				return nil
			})
		})

		if err != nil {
			if errors.Is(err, errStop) {
				return
			}
			panic(fmt.Errorf("history: get all entries: %w", err))
		}
	}
}

var ErrNotOpened = errors.New("history: not opened")

// Recorder appends successful results to the open history db.
type Recorder struct {
	Now func() time.Time
}

func (r Recorder) Record(ctx context.Context, res cipher.Result) error {
	if !Opened() {
		return ErrNotOpened
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	seq, err := Add(Entry{
		Mode:       res.Mode.String(),
		Text:       res.Text,
		CipherText: res.CipherText,
		Key:        res.Key.String(),
		Created:    now().UTC(),
	})
	if err != nil {
		return err
	}

	ctxlog.Get(ctx).Debug("recorded encryption", "seq", seq, "mode", res.Mode.String())
	return nil
}
