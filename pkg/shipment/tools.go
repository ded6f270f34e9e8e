package shipment

import (
	"context"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/registry"
)

// Tool names.
const (
	ToolTrack             = "track_shipment"
	ToolCheckAvailability = "check_reschedule_availability"
	ToolRescheduleDates   = "get_reschedule_dates"
	ToolConfirmReschedule = "confirm_reschedule"
)

type trackingArgs struct {
	TrackingNumber string `json:"tracking_number"`
}

type confirmArgs struct {
	TrackingNumber string `json:"tracking_number"`
	NewDate        string `json:"new_date"`
	PostalCode     string `json:"postal_code"`
}

var trackingParam = domain.Parameter{
	Name:        "tracking_number",
	Type:        "string",
	Description: "Shipment tracking number, e.g. AWB-12345.",
	Required:    true,
}

// Tools returns the four shipment tools bound to svc, in a stable order.
func Tools(svc *Service) []registry.Entry {
	byID := func(fn func(string) string) registry.Handler {
		return registry.Typed(func(_ context.Context, args trackingArgs) (string, error) {
			return fn(args.TrackingNumber), nil
		})
	}

	return []registry.Entry{
		{
			Tool: domain.Tool{
				Name:        ToolTrack,
				Description: "Use this tool to get the current status and location of a shipment given its tracking number (e.g., AWB-XXXXX).",
				Parameters:  []domain.Parameter{trackingParam},
			},
			Handler: byID(svc.Track),
		},
		{
			Tool: domain.Tool{
				Name:        ToolCheckAvailability,
				Description: "Use this tool to determine if rescheduling is allowed for a given shipment tracking number. Typically used if a user asks if they can reschedule their shipment.",
				Parameters:  []domain.Parameter{trackingParam},
			},
			Handler: byID(svc.CheckRescheduleAvailability),
		},
		{
			Tool: domain.Tool{
				Name:        ToolRescheduleDates,
				Description: "Use this tool to get the available dates for rescheduling a shipment, given the tracking number. Only use if rescheduling is confirmed to be allowed or if the user explicitly asks for available dates.",
				Parameters:  []domain.Parameter{trackingParam},
			},
			Handler: byID(svc.RescheduleDates),
		},
		{
			Tool: domain.Tool{
				Name:        ToolConfirmReschedule,
				Description: "Use this tool to confirm the rescheduling of a shipment. This requires the tracking number, the new desired date (YYYY-MM-DD) and the destination postal code. Ensure the user has provided all three and that rescheduling is allowed for the shipment.",
				Parameters: []domain.Parameter{
					trackingParam,
					{Name: "new_date", Type: "string", Description: "New delivery date in YYYY-MM-DD format.", Required: true},
					{Name: "postal_code", Type: "string", Description: "Destination postal code.", Required: true},
				},
			},
			Handler: registry.Typed(func(_ context.Context, args confirmArgs) (string, error) {
				return svc.ConfirmReschedule(args.TrackingNumber, args.NewDate, args.PostalCode), nil
			}),
		},
	}
}
