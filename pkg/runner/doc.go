/*
Package runner implements the conversation shell around an assistant.

The shell reads one line of input per turn, asks the assistant, prints the
answer and repeats until an exit command or end of input. Per-turn failures are
reported to the user and never end the session.

# Key Components

  - Runner: the read-ask-print loop, with a single-shot RunOnce for scripts.
  - IOHandler: decouples how lines are read and replies are shown.
  - TextHandler: interactive terminal IO with an optional markdown renderer.
  - JSONHandler: JSON-Lines IO for headless use.

# Usage

	r := runner.New(assistant,
		runner.WithConversationID("default"),
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
