/*
Package waybill builds command-line chat assistants that wrap a hosted LLM with
a fixed set of callable tools and return validated structured answers.

An Assistant combines three pieces: a tool registry, the bounded
tool-invocation loop (package agent) and the response validator (package
schema). Memory-enabled profiles also keep a sliding window of earlier turns
per conversation (package session).

# Profiles

  - Shipment: mock tracking and rescheduling tools, conversation memory on,
    answers shaped as {"response", "tools_used"}.
  - Research: web search, Wikipedia and file save tools, no memory, answers
    shaped as {"topic", "result", "summary", "sources", "tools_used"}.

# Usage

	client, err := openai.New(openai.Config{APIKey: openai.APIKeyFromEnv()})
	if err != nil {
		log.Fatal(err)
	}

	svc := shipment.NewService(shipment.DefaultSeed(), shipment.WithPostalValidation(true))
	assistant, err := waybill.NewShipmentAssistant(client, svc)
	if err != nil {
		log.Fatal(err)
	}

	reply, err := assistant.Ask(ctx, "default", "Where is AWB-12345?")
	switch {
	case errors.Is(err, domain.ErrFormatValidation):
		fmt.Println(reply.Raw)
	case err != nil:
		log.Fatal(err)
	default:
		fmt.Println(reply.Shipment.Response)
	}
*/
package waybill
