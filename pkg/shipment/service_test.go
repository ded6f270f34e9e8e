package shipment_test

import (
	"testing"

	"github.com/hazriqpedia/waybill/pkg/shipment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(opts ...shipment.Option) *shipment.Service {
	return shipment.NewService(shipment.DefaultSeed(), opts...)
}

func TestDefaultSeed(t *testing.T) {
	seed := shipment.DefaultSeed()

	require.Len(t, seed.Shipments, 3)
	assert.Equal(t, "Kuala Lumpur", seed.Shipments["AWB-12345"].Location)
	assert.True(t, seed.RescheduleAllowed["AWB-12345"])
	assert.False(t, seed.RescheduleAllowed["AWB-67890"])
	assert.Equal(t, []string{"2025-05-15", "2025-05-16", "2025-05-17"}, seed.RescheduleDates["AWB-12345"])
	assert.Equal(t, "Pending Reschedule", seed.Confirmations["AWB-12345"].Status)
}

func TestParseSeed_NormalizesIDs(t *testing.T) {
	seed, err := shipment.ParseSeed([]byte(`
shipments:
  " awb-00001 ":
    status: Picked Up
    location: Shah Alam
    postal_code: "40000"
reschedule_allowed:
  awb-00001: true
`))
	require.NoError(t, err)

	svc := shipment.NewService(seed)
	assert.Equal(t, "Your shipment AWB-00001 is currently 'Picked Up' in 'Shah Alam'.", svc.Track("awb-00001"))
}

func TestParseSeed_Invalid(t *testing.T) {
	_, err := shipment.ParseSeed([]byte("shipments: [not, a, map]"))
	assert.Error(t, err)
}

func TestTrack(t *testing.T) {
	svc := newService()

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"en route", "AWB-12345", "Your shipment AWB-12345 is currently 'En Route' in 'Kuala Lumpur'."},
		{"delivered", "AWB-67890", "Your shipment AWB-67890 is currently 'Delivered' in 'Ampang Jaya'."},
		{"lowercase and padded", "  awb-12341 ", "Your shipment AWB-12341 is currently 'En Route' in 'Petaling Jaya'."},
		{"unknown", "AWB-99999", "I'm sorry, tracking number 'AWB-99999' not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Track(tt.id))
		})
	}
}

func TestCheckRescheduleAvailability(t *testing.T) {
	svc := newService()

	assert.Equal(t, "Yes, you can reschedule this shipment. Please provide the new date (YYYY-MM-DD) and destination postal code.",
		svc.CheckRescheduleAvailability("AWB-12345"))
	assert.Equal(t, "I'm sorry, rescheduling is not allowed for this shipment.",
		svc.CheckRescheduleAvailability("AWB-67890"))
	assert.Equal(t, "I'm sorry, tracking number 'AWB-00000' not found.",
		svc.CheckRescheduleAvailability("AWB-00000"))
}

func TestRescheduleDates(t *testing.T) {
	svc := newService()

	assert.Equal(t, "Available rescheduling dates for shipment AWB-12345 are: 2025-05-15, 2025-05-16, 2025-05-17.",
		svc.RescheduleDates("AWB-12345"))
	assert.Equal(t, "I'm sorry, rescheduling is not allowed for this shipment, so no dates can be provided.",
		svc.RescheduleDates("AWB-12341"))
	assert.Equal(t, "I'm sorry, tracking number 'AWB-00000' not found.",
		svc.RescheduleDates("AWB-00000"))
}

func TestConfirmReschedule(t *testing.T) {
	t.Run("success mutates confirmation", func(t *testing.T) {
		svc := newService(shipment.WithPostalValidation(true))

		got := svc.ConfirmReschedule("AWB-12345", "2025-05-15", "56000")
		assert.Equal(t, "Okay, I've rescheduled your shipment AWB-12345 to 2025-05-15 for delivery to postal code 56000.", got)

		c, ok := svc.Confirmation("AWB-12345")
		require.True(t, ok)
		assert.Equal(t, "2025-05-12", c.OriginalDate)
		assert.Equal(t, "2025-05-15", c.NewDate)
		assert.Equal(t, shipment.StatusRescheduled, c.Status)
	})

	t.Run("not allowed leaves record absent", func(t *testing.T) {
		svc := newService()

		got := svc.ConfirmReschedule("AWB-67890", "2025-05-16", "68000")
		assert.Equal(t, "I'm sorry, rescheduling is not allowed for this shipment.", got)

		_, ok := svc.Confirmation("AWB-67890")
		assert.False(t, ok)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := newService()
		assert.Equal(t, "I'm sorry, tracking number 'AWB-55555' not found.",
			svc.ConfirmReschedule("AWB-55555", "2025-05-15", "56000"))
	})

	t.Run("date not offered", func(t *testing.T) {
		svc := newService()

		got := svc.ConfirmReschedule("AWB-12345", "2025-06-01", "56000")
		assert.Contains(t, got, "the requested date '2025-06-01' is not available")

		c, _ := svc.Confirmation("AWB-12345")
		assert.Equal(t, "Pending Reschedule", c.Status)
		assert.Empty(t, c.NewDate)
	})

	t.Run("postal mismatch when validating", func(t *testing.T) {
		svc := newService(shipment.WithPostalValidation(true))

		assert.Equal(t, "Postal code verification failed.", svc.ConfirmReschedule("AWB-12345", "2025-05-15", "50000"))

		c, _ := svc.Confirmation("AWB-12345")
		assert.Empty(t, c.NewDate)
	})

	t.Run("postal ignored when not validating", func(t *testing.T) {
		svc := newService()

		got := svc.ConfirmReschedule("AWB-12345", "2025-05-16", "50000")
		assert.Contains(t, got, "Okay, I've rescheduled")
	})
}

func TestTrackingNumbers(t *testing.T) {
	assert.Equal(t, []string{"AWB-12341", "AWB-12345", "AWB-67890"}, newService().TrackingNumbers())
}
