package ledger

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
)

const maxMemoSize int = 128

// SendMsg moves funds from one wallet to another.
type SendMsg struct {
	Metadata *timevault.Metadata
	// Source defaults to the main signer when empty.
	Source      timevault.Address
	Destination timevault.Address
	Amount      uint64
	Memo        string
}

var _ timevault.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "ledger/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Source) != 0 {
		errs = errors.AppendField(errs, "Source", m.Source.Validate())
	}
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrap(errors.ErrState, "memo too long"))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	b.Raw(2, m.Source)
	b.Raw(3, m.Destination)
	b.Uint64(4, m.Amount)
	b.Text(5, m.Memo)
	return b.Bytes(), nil
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	*m = SendMsg{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Metadata = &timevault.Metadata{}
			err = f.Message(m.Metadata)
		case 2:
			m.Source, err = f.Raw()
		case 3:
			m.Destination, err = f.Raw()
		case 4:
			m.Amount, err = f.Uint64()
		case 5:
			m.Memo, err = f.Text()
		}
		return err
	})
}
