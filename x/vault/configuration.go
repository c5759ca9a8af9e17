package vault

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/gconf"
)

const configPkg = "vault"

// Configuration of the vault extension.
type Configuration struct {
	Metadata *timevault.Metadata `json:"metadata"`
	// Treasury receives the withdrawal fee. When empty the fee stays in
	// the custody account.
	Treasury timevault.Address `json:"treasury"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if len(c.Treasury) != 0 {
		errs = errors.AppendField(errs, "Treasury", c.Treasury.Validate())
	}
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, c.Metadata); err != nil {
		return nil, err
	}
	b.Raw(2, c.Treasury)
	return b.Bytes(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			c.Metadata = &timevault.Metadata{}
			err = f.Message(c.Metadata)
		case 2:
			c.Treasury, err = f.Raw()
		}
		return err
	})
}

// loadTreasury returns the configured fee destination or nil.
func loadTreasury(db gconf.ReadStore) (timevault.Address, error) {
	var conf Configuration
	switch err := gconf.Load(db, configPkg, &conf); {
	case err == nil:
		return conf.Treasury, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, errors.Wrap(err, "cannot load configuration")
	}
}
