package canaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// sampleIDs covers both widths with a spread of values and every
// physically meaningful frame type (a frame is data, remote or error,
// never two at once).
func sampleIDs() []ID {
	return []ID{
		Standard(StandardIDZero),
		Standard(MustStandardID(0x7DF)),
		Standard(MustStandardID(0x7E8)),
		Standard(StandardIDMax.SetFlags(FlagRemote)),
		Standard(MustStandardID(0x100).SetFlags(FlagError)),
		Extended(ExtendedIDZero),
		Extended(MustExtendedID(0x7E8)),
		Extended(MustExtendedID(0x18DAF142)),
		Extended(ExtendedIDMax.SetFlags(FlagRemote)),
		Extended(ExtendedIDMax.SetFlags(FlagError)),
	}
}

func TestFilter_AnyMatchesEverything(t *testing.T) {
	f := Any()
	for _, id := range sampleIDs() {
		assert.True(t, f.Matches(id), "id %s", id)
	}
}

func TestFilter_NoneMatchesNothing(t *testing.T) {
	f := None()
	for _, id := range sampleIDs() {
		assert.False(t, f.Matches(id), "id %s", id)
	}
	// The one word that would compare equal is the maximal extended
	// identifier flagged as remote and error at once, which no physical
	// frame can be.
	assert.False(t, f.Matches(Extended(ExtendedIDMax)))
	assert.False(t, f.Matches(Extended(ExtendedIDMax.SetFlags(FlagRemote))))
}

func TestFilter_Identity(t *testing.T) {
	id := Standard(MustStandardID(0x7E0))
	f := Identity(id)
	assert.True(t, f.Matches(id))
	// Different value.
	assert.False(t, f.Matches(Standard(MustStandardID(0x7E1))))
	// Same value, extended width.
	assert.False(t, f.Matches(Extended(MustExtendedID(0x7E0))))

	// An identity over a flagged identifier compares the flag too.
	rtr := Standard(MustStandardID(0x7E0).SetFlags(FlagRemote))
	assert.True(t, Identity(rtr).Matches(rtr))
	assert.False(t, Identity(rtr).Matches(id))
}

func TestFilter_Range_OBDResponseBand(t *testing.T) {
	f := Range(Standard(MustStandardID(0x7E0)), Standard(MustStandardID(0x7EF)))
	for v := uint16(0x7E0); v <= 0x7EF; v++ {
		assert.True(t, f.Matches(Standard(MustStandardID(v))), "0x%X", v)
	}
	assert.False(t, f.Matches(Standard(MustStandardID(0x7DF))))
	assert.False(t, f.Matches(Standard(MustStandardID(0x7F0))))
	// Same numeric value, extended width: the flag bits differ.
	assert.False(t, f.Matches(Extended(MustExtendedID(0x7E8))))
}

func TestFilter_Range_ArgumentOrder(t *testing.T) {
	lo := Standard(MustStandardID(0x7E8))
	hi := Standard(MustStandardID(0x7EF))
	a := Range(lo, hi)
	b := Range(hi, lo)
	assert.Equal(t, a, b)
	for _, id := range sampleIDs() {
		assert.Equal(t, a.Matches(id), b.Matches(id), "id %s", id)
	}
}

func TestFilter_Range_ExtendedBand(t *testing.T) {
	f := Range(Extended(MustExtendedID(0x18DAF100)), Extended(MustExtendedID(0x18DAF1FF)))
	assert.True(t, f.Matches(Extended(MustExtendedID(0x18DAF100))))
	assert.True(t, f.Matches(Extended(MustExtendedID(0x18DAF142))))
	assert.True(t, f.Matches(Extended(MustExtendedID(0x18DAF1FF))))
	assert.False(t, f.Matches(Extended(MustExtendedID(0x18DAF200))))
	assert.False(t, f.Matches(Extended(MustExtendedID(0x18DAF0FF))))
	assert.False(t, f.Matches(Standard(MustStandardID(0x100))))
}

func TestFilter_DataAndErrorFramesOnly(t *testing.T) {
	data := DataFramesOnly()
	errs := ErrorFramesOnly()
	for _, id := range sampleIDs() {
		wantErr := id.Flags().Has(FlagError)
		assert.Equal(t, !wantErr, data.Matches(id), "data filter, id %s", id)
		assert.Equal(t, wantErr, errs.Matches(id), "error filter, id %s", id)
	}
}

func TestFilter_FlagToggles(t *testing.T) {
	base := Any().DisallowExtendedFrames()
	// The toggle pair lands back on the same mask bit state.
	assert.Equal(t, base, base.AllowExtendedFrames().DisallowExtendedFrames())
	assert.Equal(t, Any(), Any().DisallowRTRFrames().AllowRTRFrames())

	// Disallowing extended frames on an all-pass filter rejects exactly
	// the extended identifiers.
	for _, id := range sampleIDs() {
		assert.Equal(t, !id.IsExtended(), base.Matches(id), "id %s", id)
	}
}

func TestFilter_TogglesCompose(t *testing.T) {
	f := Any().DisallowExtendedFrames().DisallowRTRFrames().DisallowErrorFrames()
	want := Mask(FlagExtended.Bits() | FlagRemote.Bits() | FlagError.Bits())
	assert.Equal(t, want, f.Mask())

	// Only a bare standard data-frame identifier passes.
	assert.True(t, f.Matches(Standard(MustStandardID(0x42))))
	assert.False(t, f.Matches(Standard(MustStandardID(0x42).SetFlags(FlagRemote))))
	assert.False(t, f.Matches(Extended(MustExtendedID(0x42))))
}

func TestMask_Algebra(t *testing.T) {
	assert.Equal(t, MaskNone, MaskAll.Add(NewMask(1)))      // wraps
	assert.Equal(t, MaskAll, MaskNone.Sub(NewMask(1)))      // wraps
	assert.Equal(t, NewMask(0x0F0), NewMask(0xFF0).And(NewMask(0x0FF)))
	assert.Equal(t, NewMask(0xFFF), NewMask(0xF00).Or(NewMask(0x0FF)))
	assert.Equal(t, NewMask(0xF0F), NewMask(0xFF0).Xor(NewMask(0x0FF)))
}
