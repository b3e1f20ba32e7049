package boards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectedBoardPins(t *testing.T) {
	m := Selected.Pins
	assert.NoError(t, m.Validate())

	// UART1 function pairs on the RP2040.
	pairs := map[[2]int]bool{{4, 5}: true, {8, 9}: true, {20, 21}: true, {24, 25}: true}
	assert.True(t, m.LogUART)
	assert.True(t, pairs[[2]int{m.LogTX, m.LogRX}], "tx/rx %d/%d is not a UART1 pair", m.LogTX, m.LogRX)
}
