package session

// User-facing notices for the recoverable error cases. These always terminate
// at the engine boundary; the transport never sees a raw internal error.
const (
	noticeNoSession      = "❌ You don't have a session yet. Send /start first."
	noticeNoQuestion     = "❌ No active question. Tap 📚 Practice to draw a word first."
	noticeNotRevealed    = "❌ Reveal the answer before rating yourself."
	noticeBadScore       = "❌ That score isn't one of the offered options."
	noticeUnauthorized   = "❌ You don't have administrator rights!"
	noticeInternalError  = "❌ Something went wrong. Please try again."
	noticeNoWordsForTier = "❌ There are no words for your level yet. Try another level."
)

// HelpText is the /help reply, also shown for the Help menu entry.
const HelpText = `📖 How to use this bot:

1. Tap "📚 Practice" to start drilling words
2. Pick a difficulty in the "⚙️ Level" menu
3. Pick a translation direction in the "🔄 Direction" menu
4. Follow your results under "📊 My progress"

Commands:
/start - Start the bot
/menu - Show the main menu
/help - Show this help
/stop - Stop the bot`
