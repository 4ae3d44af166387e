package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                               `{"a":1}`,
		"Here you go:\n```json\n{\"a\":1}\n```": `{"a":1}`,
		"prose before {\"a\": {\"b\": 2}} prose after": `{"a": {"b": 2}}`,
		"  USD  ": "USD",
	}
	for in, want := range cases {
		assert.Equal(t, want, string(ExtractJSONObject(in)), "input %q", in)
	}
}

func TestDecodeAligned(t *testing.T) {
	reply := `The sorted result:
{
  "sorted_invoice_containers": {"A": [{"Код ТН ВЭД": "870323"}], "B": []},
  "sorted_xml_containers": {"D1": [], "D2": []}
}`
	out, err := DecodeAligned(reply)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, []string{"A", "B"}, out.Invoice.Keys())
	assert.Equal(t, []string{"D1", "D2"}, out.Declaration.Keys())
	require.Len(t, out.Invoice.Get("A"), 1)
	assert.Equal(t, "870323", out.Invoice.Get("A")[0].HSCode)
}

func TestDecodeAlignedRejectsBadReplies(t *testing.T) {
	bad := []string{
		"",
		"not json at all",
		`{"sorted_invoice_containers": {}}`,
		`{"sorted_invoice_containers": {}, "sorted_xml_containers": {}, "extra": 1}`,
		`{"sorted_invoice_containers": {"A": "not a list"}, "sorted_xml_containers": {}}`,
		`{"sorted_invoice_containers": [], "sorted_xml_containers": {}}`,
	}
	for _, in := range bad {
		_, err := DecodeAligned(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestValidateAlignedShape(t *testing.T) {
	ok := []byte(`{"sorted_invoice_containers": {"A": []}, "sorted_xml_containers": {}}`)
	assert.NoError(t, ValidateAlignedShape(ok))

	missing := []byte(`{"sorted_xml_containers": {}}`)
	assert.Error(t, ValidateAlignedShape(missing))
}
