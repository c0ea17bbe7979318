package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/shreekarashastry/miningsim/experiment"
)

var ErrReportNotFound = errors.New("report not found in store")

// Keys:
// Report: "report:<scenario>:<seed>" -> gob encoded experiment.Report
const reportPrefix = "report:"

// ReportKey identifies the report of a scenario run with a given seed.
func ReportKey(scenario string, seed int64) string {
	return fmt.Sprintf("%s%s:%d", reportPrefix, scenario, seed)
}

// BadgerStore persists experiment reports in BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates or opens a store at path. An empty path opens an
// in-memory store.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open store %q", path)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// SaveReport stores r, replacing an earlier report for the same scenario
// and seed.
func (s *BadgerStore) SaveReport(r *experiment.Report) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ReportKey(r.Scenario, r.Seed)), buf.Bytes())
	})
}

func (s *BadgerStore) GetReport(scenario string, seed int64) (*experiment.Report, error) {
	var r experiment.Report
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ReportKey(scenario, seed)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errors.Wrapf(ErrReportNotFound, "%s seed %d", scenario, seed)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&r)
		})
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReports returns every stored report in key order.
func (s *BadgerStore) ListReports() ([]*experiment.Report, error) {
	var reports []*experiment.Report
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(reportPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var r experiment.Report
			err := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&r)
			})
			if err != nil {
				return errors.Wrapf(err, "failed to decode %s", strings.TrimPrefix(string(item.Key()), reportPrefix))
			}
			reports = append(reports, &r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}
