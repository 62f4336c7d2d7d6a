package smolnet

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smolnet",
			Name:      "dispatch_total",
			Help:      "Completed dispatches by transfer mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smolnet",
			Name:      "dispatch_duration_seconds",
			Help:      "Time from request start to classified result.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)

// outcomeLabel gives a low cardinality label for a result.
func outcomeLabel[T any](res *Result[T]) string {
	if res.Err != nil {
		switch res.Err.Kind {
		case KindBadRequest:
			return "bad_request"
		case KindServerError:
			return "server_error"
		case KindInvalidResponse:
			return "invalid_response"
		case KindNoData:
			return "no_data"
		case KindDecoding:
			return "decoding_error"
		default:
			return "unknown"
		}
	}
	return res.Kind.String()
}

func observe[T any](mode TransferMode, start time.Time, res *Result[T]) {
	dispatchTotal.WithLabelValues(mode.String(), outcomeLabel(res)).Inc()
	dispatchDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
}
