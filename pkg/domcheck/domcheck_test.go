package domcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const billingStep = `<!DOCTYPE html>
<html><body>
<form>
  <input id="billingContactName" type="text">
  <input id="billingPhone" type="tel">
  <select id="billingProvince">
    <option value="">Select province</option>
    <option value="AB">Alberta</option>
    <option value="BC">British Columbia</option>
  </select>
  <select id="noValues"><option>Only Text</option></select>
  <input id="billingPostalCode" type="text">
  <button type="button">Next</button>
</form>
</body></html>`

func TestParse(t *testing.T) {
	snap, err := ParseString(billingStep)
	require.NoError(t, err)

	assert.True(t, snap.Has("billingPhone"))
	assert.Equal(t, "select", snap.IDs["billingProvince"])
	assert.False(t, snap.Has("eventContactPhone"))

	assert.Equal(t, []string{"", "AB", "BC"}, snap.Options["billingProvince"])
	assert.True(t, snap.HasOption("billingProvince", "AB"))
	assert.False(t, snap.HasOption("billingProvince", "ON"))
	assert.True(t, snap.HasOption("noValues", "Only Text"))
}

func TestSnapshot_Problems(t *testing.T) {
	snap, err := ParseString(billingStep)
	require.NoError(t, err)

	tests := []struct {
		name   string
		expect []string
		want   []string
	}{
		{
			name:   "all present",
			expect: []string{"billingPhone", "billingPostalCode", "billingProvince=AB"},
			want:   nil,
		},
		{
			name:   "missing field",
			expect: []string{"eventContactPhone", "billingPhone"},
			want:   []string{"missing #eventContactPhone"},
		},
		{
			name:   "missing option",
			expect: []string{"billingProvince=QC"},
			want:   []string{`#billingProvince has no option "QC"`},
		},
		{
			name:   "missing select reported once",
			expect: []string{"shippingProvince=AB"},
			want:   []string{"missing #shippingProvince"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snap.Problems(tt.expect))
		})
	}
}

func TestCheck_EmptyDocument(t *testing.T) {
	problems, err := Check("", []string{"organizationName"})
	require.NoError(t, err)
	assert.Equal(t, []string{"missing #organizationName"}, problems)
}
