package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeForFormulaInjection(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", SanitizeForFormulaInjection("=SUM(A1)"))
	assert.Equal(t, "'+1234", SanitizeForFormulaInjection("+1234"))
	assert.Equal(t, "'-2,00", SanitizeForFormulaInjection("-2,00"))
	assert.Equal(t, "'@cmd", SanitizeForFormulaInjection("@cmd"))
	assert.Equal(t, "Piens 2% 1L", SanitizeForFormulaInjection("Piens 2% 1L"))
	assert.Equal(t, "", SanitizeForFormulaInjection(""))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "Piens 2% 1L", StripUnprintable("Pie\x07ns 2% 1L"))
	assert.Equal(t, "line one\nline two", StripUnprintable("line one\nline two"))
	assert.Equal(t, "tabs\tand\rreturns", StripUnprintable("tabs\tand\rreturns"))
	assert.Equal(t, "Sviests Smiltene 82% 200g", StripUnprintable("Sviests Smiltene 82% 200g\x00"))
	assert.Equal(t, "franēu", StripUnprintable("franēu"))
}
