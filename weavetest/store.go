package weavetest

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/store/iavl"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data. Use it instead of MemStore when a test needs
// the same storage implementation as the production instance.
func CommitKVStore(t testing.TB) (db timevault.CommitKVStore, cleanup func()) {
	t.Helper()
	dbpath, err := ioutil.TempDir("", "timevault-")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}
	db = iavl.NewCommitStore(dbpath, "db")
	return db, func() { os.RemoveAll(dbpath) }
}
