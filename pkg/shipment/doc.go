// Package shipment simulates a shipment-tracking backend and exposes it as tools.
//
// The Service owns four tables (tracking, reschedule eligibility, offered dates
// and confirmation records) seeded from YAML. Every query answers with text:
// domain failures such as an unknown tracking number are messages, not errors.
package shipment
