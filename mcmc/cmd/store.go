package cmd

import (
	"path/filepath"
	"strconv"

	"github.com/APanico12/MCMC/mcmc/common/db"
	clogging "github.com/APanico12/MCMC/mcmc/common/logging"
	"github.com/APanico12/MCMC/mcmc/common/storage"
	"github.com/APanico12/MCMC/mcmc/sampler/history"
	"github.com/APanico12/MCMC/version"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	dbSubDir = "db"

	maxRecordSize    = 1 << 20 // bytes
	maxMetaKeySize   = 32
	maxMetaValueSize = 256

	gibbsSampler = "gibbs"
	mhSampler    = "mh"
)

var (
	metaVersionKey = []byte("version")
	metaNGroupsKey = []byte("n_groups")

	recordsLB = make([]byte, history.KeyLength)

	errRunExists   = errors.New("run already stored")
	errRunNotFound = errors.New("run not found")
)

// runStore stores the history of a single named sampler run. The records live in one namespace
// and the run metadata in another; the version metadata is written last and marks a complete
// run.
type runStore struct {
	name    string
	records storage.StorerLoaderDeleter
	meta    storage.StorerLoader
}

func openDB(dataDir string) (*db.BadgerDB, error) {
	return db.NewBadgerDB(filepath.Join(dataDir, dbSubDir))
}

// closeDB closes the database after work on it ended with workErr (possibly nil). Both errors are
// logged together under msg, and the first non-nil one is returned.
func closeDB(
	kvdb db.KVDB, workErr error, msg string, logger *zap.Logger, fields ...zap.Field,
) error {
	closeErr := kvdb.Close()
	if workErr == nil && closeErr == nil {
		return nil
	}
	errs := clogging.ToErrArray(map[string]error{"run": workErr, "close": closeErr})
	logger.Error(msg, append(fields, zap.Array("errors", errs))...)
	if workErr != nil {
		return workErr
	}
	return errors.Wrap(closeErr, "closing database")
}

func newRunStore(kvdb db.KVDB, sampler, run string) (*runStore, error) {
	recordsNS, err := storage.RunNamespace(sampler, run, "records")
	if err != nil {
		return nil, err
	}
	metaNS, err := storage.RunNamespace(sampler, run, "meta")
	if err != nil {
		return nil, err
	}
	return &runStore{
		name: run,
		records: storage.NewKVDBStorerLoaderDeleter(
			recordsNS,
			kvdb,
			storage.NewExactLengthChecker(history.KeyLength),
			storage.NewMaxLengthChecker(maxRecordSize),
		),
		meta: storage.NewKVDBStorerLoader(
			metaNS,
			kvdb,
			storage.NewMaxLengthChecker(maxMetaKeySize),
			storage.NewMaxLengthChecker(maxMetaValueSize),
		),
	}, nil
}

func (rs *runStore) exists() (bool, error) {
	v, err := rs.meta.Load(metaVersionKey)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// prepare checks that the run has not been stored yet and removes records left by an
// incomplete earlier save.
func (rs *runStore) prepare() error {
	exists, err := rs.exists()
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrap(errRunExists, rs.name)
	}
	var stale [][]byte
	err = rs.records.Iterate(recordsLB, nil, make(chan struct{}), func(key, _ []byte) {
		stale = append(stale, append([]byte(nil), key...))
	})
	if err != nil {
		return err
	}
	for _, key := range stale {
		if err := rs.records.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (rs *runStore) finish() error {
	return rs.meta.Store(metaVersionKey, []byte(version.Version.String()))
}

func (rs *runStore) checkReadable() error {
	stored, err := rs.meta.Load(metaVersionKey)
	if err != nil {
		return err
	}
	if stored == nil {
		return errors.Wrap(errRunNotFound, rs.name)
	}
	ok, err := version.CanRead(string(stored))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("run %s stored by version %s cannot be read by version %s",
			rs.name, stored, version.Version)
	}
	return nil
}

func (rs *runStore) saveGibbs(h *history.Gibbs, nGroups int) error {
	if err := rs.prepare(); err != nil {
		return err
	}
	if err := history.Save(h.History, rs.records); err != nil {
		return err
	}
	if err := rs.meta.Store(metaNGroupsKey, []byte(strconv.Itoa(nGroups))); err != nil {
		return err
	}
	return rs.finish()
}

func (rs *runStore) loadGibbs() (*history.Gibbs, int, error) {
	if err := rs.checkReadable(); err != nil {
		return nil, 0, err
	}
	value, err := rs.meta.Load(metaNGroupsKey)
	if err != nil {
		return nil, 0, err
	}
	nGroups, err := strconv.Atoi(string(value))
	if err != nil {
		return nil, 0, errors.Wrap(err, "parsing stored number of groups")
	}
	h, err := history.LoadGibbs(rs.records)
	if err != nil {
		return nil, 0, err
	}
	return h, nGroups, nil
}

func (rs *runStore) saveMH(h *history.MH) error {
	if err := rs.prepare(); err != nil {
		return err
	}
	if err := history.Save(h.History, rs.records); err != nil {
		return err
	}
	return rs.finish()
}

func (rs *runStore) loadMH() (*history.MH, error) {
	if err := rs.checkReadable(); err != nil {
		return nil, err
	}
	return history.LoadMH(rs.records)
}
