package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReceipt(t *testing.T) {
	exporter := NewPDFExporter()

	data, err := exporter.RenderReceipt(Receipt{
		SchoolName:    "Demo Grammar School",
		ReceiptNumber: "RCP-20260901-ABCD1234",
		StudentName:   "Chidi Okafor",
		ClassName:     "JSS 1A",
		Term:          "First Term",
		AcademicYear:  "2026/2027",
		Amount:        20000,
		Method:        "cash",
		PaidAt:        time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC).Format("2006-01-02"),
		Balance:       30000,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.NotEmpty(t, data)
}
