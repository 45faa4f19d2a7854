package telegram

// UI texts in English
const (
	promptNameText = "Let's start! What's your full name?"
	cancelText     = "Cancelling the dialogue."
	unhandledText  = "Unable to handle the message. Type /help to see the usage."
	storeFailText  = "Registration failed. Please try again later."

	helpText = "These commands are supported:\n" +
		"/start — register a person to watch over\n" +
		"/cancel — abort the current registration\n" +
		"/help — display this text"
)
