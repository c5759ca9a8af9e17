package vault

import (
	"context"
	"testing"

	"github.com/iov-one/timevault/weavetest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCustodyDerivation(t *testing.T) {
	Convey("Given two owners", t, func() {
		alice := weavetest.NewAddress()
		bob := weavetest.NewAddress()

		Convey("Record keys are deterministic addresses", func() {
			So(RecordKey(alice), ShouldResemble, RecordKey(alice))
			So(RecordKey(alice), ShouldNotResemble, RecordKey(bob))
			So(len(RecordKey(alice)), ShouldEqual, 20)
		})

		Convey("Record keys differ from the owner address", func() {
			So([]byte(alice), ShouldNotResemble, RecordKey(alice))
		})

		Convey("Every nonce derives another custody condition", func() {
			key := RecordKey(alice)
			c255 := CustodyCondition(key, 255)
			c254 := CustodyCondition(key, 254)
			So(c255.Equals(c254), ShouldBeFalse)
			So(c255.Address(), ShouldNotResemble, c254.Address())

			ext, typ, _, err := c255.Parse()
			So(err, ShouldBeNil)
			So(ext, ShouldEqual, ExtensionName)
			So(typ, ShouldEqual, custodyType)
		})

		Convey("A vault custody address uses the stored nonce", func() {
			v := &Vault{Owner: alice, DerivationNonce: 200}
			want := CustodyCondition(RecordKey(alice), 200).Address()
			So(v.CustodyAddress(), ShouldResemble, want)
		})

		Convey("Custody authentication grants only the custody address", func() {
			cond := CustodyCondition(RecordKey(alice), 255)
			auth := custodyAuth{cond: cond}
			ctx := context.Background()
			So(auth.HasAddress(ctx, cond.Address()), ShouldBeTrue)
			So(auth.HasAddress(ctx, alice), ShouldBeFalse)
			So(auth.GetConditions(ctx), ShouldHaveLength, 1)
		})
	})
}
