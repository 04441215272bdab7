package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/acmi/internal/dispatcher"

// meter is swapped in tests.
var meter = func() metric.Meter {
	return otel.Meter(instrumentationName)
}
