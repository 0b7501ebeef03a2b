package controlplane

// Тексты панели управления
const (
	promptEnterLogin      = "Enter your login:"
	promptLoginMustBeText = "The login must be plain text. Enter your login:"
	promptEnterPassword   = "Enter your password:"
	promptPassMustBeText  = "The password must be plain text. Enter your password:"
	promptAuthFailure     = "Wrong login or password."
	promptMainPage        = "Administrator panel.\nType @%s <query> in any field to search applications."
	promptBundlesList     = "Registered applications:"
	promptNoBundles       = "No applications have checked in yet."
	promptNoSuchPage      = "No such page"
	promptBundleRemoved   = "Application removed."
	promptBundleNotFound  = "Application not found."
	promptLogout          = "Logged out."
	promptAccessDenied    = "Access denied, please log in again."
	promptCancelled       = "Cancelled."

	bundleInfo       = "Application: %s\nExecution: %s\nLast check: %s"
	executionAllowed = "allowed ✅"
	executionDenied  = "blocked ❌"

	inlineOnlyDirectChat = "Inline search works only in the chat with the bot"
	inlineAccessDenied   = "Access denied, please relogin"
	inlineNotFound       = "Nothing found for \"%s\""
	inlineEditPrompt     = "Edit %s"
	inlineNopeText       = "Nope"
)

// Кнопки
const (
	buttonApplications = "📱 Applications"
	buttonLogout       = "🚪 Logout"
	buttonBlock        = "❌ Block execution"
	buttonAllow        = "✅ Allow execution"
	buttonRemove       = "🗑 Remove"
)

// editTextTrigger — префикс сообщения, которое отправляет inline-результат
// поиска; остаток строки является идентификатором приложения
const editTextTrigger = "Edit "

// Callback actions, закодированные как action@argument
const (
	actionControlBundle = "control_bundle"
	actionViewApps      = "view_apps"
	actionBlockBundle   = "block_bundle"
	actionAllowBundle   = "allow_bundle"
	actionRemoveBundle  = "remove_bundle"
)
