package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/store"
	"github.com/iov-one/timevault/weavetest/assert"
)

type testConfig struct {
	Limit int64  `json:"limit"`
	Label string `json:"label"`
}

func (c *testConfig) Validate() error {
	if c.Limit <= 0 {
		return errors.Field("Limit", errors.ErrInput, "must be positive")
	}
	return nil
}

func (c *testConfig) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Int64(1, c.Limit)
	b.Text(2, c.Label)
	return b.Bytes(), nil
}

func (c *testConfig) Unmarshal(raw []byte) error {
	*c = testConfig{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			c.Limit, err = f.Int64()
		case 2:
			c.Label, err = f.Text()
		}
		return err
	})
}

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		conf        *testConfig
		wantSaveErr *errors.Error
	}{
		"valid": {
			conf: &testConfig{Limit: 12, Label: "vault"},
		},
		"invalid cannot be saved": {
			conf:        &testConfig{Limit: -1},
			wantSaveErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			err := Save(db, "mypkg", tc.conf)
			assert.IsErr(t, tc.wantSaveErr, err)
			if tc.wantSaveErr != nil {
				return
			}
			var got testConfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, *tc.conf, got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var got testConfig
	assert.IsErr(t, errors.ErrNotFound, Load(db, "other", &got))
}

func TestInitConfig(t *testing.T) {
	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
		want    testConfig
	}{
		"configuration loaded": {
			genesis: `{"conf": {"mypkg": {"limit": 7, "label": "seven"}}}`,
			want:    testConfig{Limit: 7, Label: "seven"},
		},
		"missing package": {
			genesis: `{"conf": {"otherpkg": {"limit": 7}}}`,
			wantErr: errors.ErrNotFound,
		},
		"invalid configuration": {
			genesis: `{"conf": {"mypkg": {"limit": 0}}}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts timevault.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			var conf testConfig
			err := InitConfig(db, opts, "mypkg", &conf)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			var got testConfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.want, got)
		})
	}
}
