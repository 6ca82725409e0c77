package alerting

// ReasonNoPhone is the failure reason for a recipient without a phone number.
const ReasonNoPhone = "no phone on file"

// Delivery is the result of one notification attempt: either delivered, or
// failed with a reason. Senders report transport problems through a Delivery
// instead of an error.
type Delivery struct {
	ok     bool
	reason string
}

// Delivered reports a successful delivery.
func Delivered() Delivery {
	return Delivery{ok: true}
}

// Failed reports a failed delivery.
func Failed(reason string) Delivery {
	if reason == "" {
		reason = "unknown failure"
	}
	return Delivery{reason: reason}
}

func (d Delivery) OK() bool { return d.ok }

// Reason is empty for a successful delivery.
func (d Delivery) Reason() string { return d.reason }

func (d Delivery) String() string {
	if d.ok {
		return "delivered"
	}
	return "failed: " + d.reason
}
