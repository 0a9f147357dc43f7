package bybit

import (
	"testing"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKlineFetchLimit(t *testing.T) {
	// One extra row for the still-forming bar, never above the API cap.
	assert.Equal(t, 201, klineFetchLimit(0))
	assert.Equal(t, 201, klineFetchLimit(200))
	assert.Equal(t, 1000, klineFetchLimit(999))
	assert.Equal(t, 1000, klineFetchLimit(1000))
	assert.Equal(t, 1000, klineFetchLimit(5000))
}

func TestParseKlineResponse_ReversesAndDropsFormingBar(t *testing.T) {
	// Rows arrive newest first: [startTime, open, high, low, close, volume, turnover].
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"symbol":   "BTCUSDT",
			"category": "linear",
			"list": [][]string{
				{"1700007200000", "103", "106", "101", "104", "12", "1240"},
				{"1700003600000", "102", "105", "100", "103", "11", "1130"},
				{"1700000000000", "101", "104", "99", "102", "10", "1020"},
			},
		},
	}

	c := &Client{}
	candles, err := c.parseKlineResponse(resp)
	require.NoError(t, err)

	// Oldest first, with the newest (still forming) row dropped.
	require.Len(t, candles, 2)
	assert.Equal(t, 102.0, candles[0].Close)
	assert.Equal(t, 103.0, candles[1].Close)
	assert.True(t, candles[0].Timestamp.Before(candles[1].Timestamp))
}

func TestParseKlineResponse_APIError(t *testing.T) {
	resp := &bybit_api.ServerResponse{RetCode: 10001, RetMsg: "params error"}

	c := &Client{}
	_, err := c.parseKlineResponse(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "params error")
}
