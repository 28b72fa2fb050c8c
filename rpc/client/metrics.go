package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

var (
	callDuration   = metrics.NewHistogram(`mqrpc_client_call_duration_seconds`)
	droppedReplies = metrics.NewCounter(`mqrpc_client_dropped_replies_total`)
)

// observeCall records the outcome and duration of a call
func observeCall(start time.Time, err error) {
	callDuration.Update(time.Since(start).Seconds())
	metrics.GetOrCreateCounter(fmt.Sprintf(`mqrpc_client_calls_total{outcome=%q}`, outcome(err))).Inc()
}

// outcome classifies a call error for the metric label
func outcome(err error) string {
	var (
		remoteErr   *common.RemoteError
		protocolErr *common.ProtocolError
		encodingErr *common.EncodingError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &remoteErr):
		return "remote_error"
	case errors.As(err, &protocolErr):
		return "protocol_error"
	case errors.As(err, &encodingErr):
		return "encoding_error"
	case errors.Is(err, common.ErrCallTimeout):
		return "timeout"
	default:
		return "failed"
	}
}
