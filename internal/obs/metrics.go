package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PurchaseTotal counts purchase submission outcomes.
	PurchaseTotal *prometheus.CounterVec
	// ChangeShortfallTotal counts purchases where the till could not dispense
	// the full change amount.
	ChangeShortfallTotal prometheus.Counter
	// ReceiptEmailTotal counts receipt email delivery outcomes.
	ReceiptEmailTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers the billing collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PurchaseTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_total",
			Help:      "Count of purchase submission outcomes.",
		}, []string{"result"})
		ChangeShortfallTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_shortfall_total",
			Help:      "Number of purchases with undispensed change.",
		})
		ReceiptEmailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_email_total",
			Help:      "Count of receipt email delivery outcomes.",
		}, []string{"result"})

		reg.MustRegister(PurchaseTotal, ChangeShortfallTotal, ReceiptEmailTotal)
	})
}

// ObservePurchase increments the purchase outcome counter when metrics are
// registered; safe to call otherwise.
func ObservePurchase(result string) {
	if PurchaseTotal != nil {
		PurchaseTotal.WithLabelValues(result).Inc()
	}
}

// ObserveChangeShortfall increments the shortfall counter when registered.
func ObserveChangeShortfall() {
	if ChangeShortfallTotal != nil {
		ChangeShortfallTotal.Inc()
	}
}

// ObserveReceiptEmail increments the receipt email counter when registered.
func ObserveReceiptEmail(result string) {
	if ReceiptEmailTotal != nil {
		ReceiptEmailTotal.WithLabelValues(result).Inc()
	}
}
