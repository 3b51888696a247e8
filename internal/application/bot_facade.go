package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/usecase"
)

// Reply is what a handler wants sent back to the chat. The Telegram
// adapter just forwards it; the facade never touches the wire types.
type Reply struct {
	Text     string
	ImageRef string
	Buttons  [][]model.Button
	// Edit asks the adapter to rewrite the triggering message in place
	// instead of sending a new one.
	Edit bool
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && r.ImageRef == ""
}

// ConfirmCallbackPrefix tags confirm buttons with the staged broadcast
// id. Only the id crosses the wire; the payload stays server-side.
const ConfirmCallbackPrefix = "bc:confirm:"

// BotFacade composes usecases into high-level bot replies. Handlers
// return Reply values so the Telegram adapter stays a dumb pipe.
type BotFacade struct {
	UserUC      usecase.UserUseCase
	BroadcastUC usecase.BroadcastUseCase
	StatsUC     usecase.StatsUseCase
	Gate        usecase.AdminGate

	WebAppURL     string
	AdminPanelURL string
	SupportURL    string
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	broadcastUC usecase.BroadcastUseCase,
	statsUC usecase.StatsUseCase,
	gate usecase.AdminGate,
	webAppURL, adminPanelURL, supportURL string,
) *BotFacade {
	return &BotFacade{
		UserUC:        userUC,
		BroadcastUC:   broadcastUC,
		StatsUC:       statsUC,
		Gate:          gate,
		WebAppURL:     webAppURL,
		AdminPanelURL: adminPanelURL,
		SupportURL:    supportURL,
	}
}

// track records the interaction; failures stay internal.
func (b *BotFacade) track(ctx context.Context, tgID, chatID int64, firstName, username string) {
	u := model.NewUser(tgID, chatID)
	u.FirstName = firstName
	u.Username = username
	b.UserUC.Track(ctx, u)
}

// HandleStart greets the player. A deep-link payload is a referral code
// staged until phone verification claims it.
func (b *BotFacade) HandleStart(ctx context.Context, tgID, chatID int64, firstName, username, payload string) Reply {
	b.track(ctx, tgID, chatID, firstName, username)

	if payload != "" {
		// The stage keeps the newest code; expiry covers abandonment.
		_ = b.UserUC.StageReferral(ctx, tgID, payload)
	}

	name := firstName
	if name == "" {
		name = "Player"
	}
	return Reply{
		Text: "🚀🚀🚀🚀🚀🚀🚀🚀🚀🚀🚀",
		Buttons: [][]model.Button{
			{model.NewCallbackButton(fmt.Sprintf("👋 እንኳን ደህና መጡ %s! ለመጀመር ይሄን ይጫኑ 🚀", name), "start")},
		},
	}
}

// WelcomeBanner is the logo caption shown when the start button is
// pressed. The adapter pairs it with the logo asset when present.
func (b *BotFacade) WelcomeBanner(firstName string) string {
	name := firstName
	if name == "" {
		name = "Player"
	}
	return fmt.Sprintf("🎯 *እንኳን ወደ ሃገሬ ጌምስ መጡ, %s!*\n\n🌟 *አጓጊ እና አስደሳች የቢንጎ ጨዋታዎች መገኛ*\n\nበሽልማት ለመንበሽበሽ ተዘጋጅተዋል?", name)
}

func (b *BotFacade) mainMenuButtons() [][]model.Button {
	return [][]model.Button{
		{model.NewWebAppButton("🚀 ወደ ጨዋታ ይሂዱ", b.WebAppURL)},
		{model.NewCallbackButton("📋 የጨዋታ መመሪያ", "rules")},
		{
			model.NewCallbackButton("🎁 ቦነሶች", "bonuses"),
			model.NewCallbackButton("💬 ድጋፍ", "support"),
		},
	}
}

// HandleMainMenu serves both the post-logo menu and the "back" edits.
func (b *BotFacade) HandleMainMenu(ctx context.Context, tgID, chatID int64, firstName string, edit bool) Reply {
	b.track(ctx, tgID, chatID, firstName, "")
	name := firstName
	if name == "" {
		name = "Player"
	}
	text := fmt.Sprintf("🎮 ምን ማድረግ ይፈልጋሉ %s?", name)
	if edit {
		text = "🎮 *ምን ማረግ ይፈልጋሉ:*\n\n• **ወደ ጌም**\n• **መመሪያ**\n• **ቦነስ**\n• **ድጋፍ**"
	}
	return Reply{Text: text, Buttons: b.mainMenuButtons(), Edit: edit}
}

func (b *BotFacade) HandlePlay(ctx context.Context, tgID, chatID int64) Reply {
	b.track(ctx, tgID, chatID, "", "")
	return Reply{
		Text: "🎯 *ለመጫወት ተዘጋጁ??*\n\n" +
			"🎮 በተኑን ይጫኑ እና ወደ ጌም ይወስዶታል!\n\n" +
			"💡 *Pro Tip:* Make sure you have a stable internet connection for the best gaming experience.",
		Buttons: [][]model.Button{
			{model.NewWebAppButton("🚀 ወደ ሃገሬ ጌምስ ሂድ", b.WebAppURL)},
			{
				model.NewCallbackButton("📋 መመሪያ", "quick_rules"),
				model.NewCallbackButton("🔙 ተመለስ", "main_menu"),
			},
		},
	}
}

func (b *BotFacade) HandleRules(ctx context.Context, tgID, chatID int64) Reply {
	b.track(ctx, tgID, chatID, "", "")
	return Reply{
		Text: "📋 *HAGERE BINGO - የጨዋታ መመሪያ*\n\n" +
			"🎯 **የጨዋታው አላማ:**\n የቢንጎ ፓተርኑን ቀድሞ መዝጋት!\n\n" +
			"🎮 **ለመጫወት:**\n" +
			"1️⃣ መጫወት የሚፈልጉትን የጌም አይነት ይምረጡ\n" +
			"2️⃣ ካርቴላ ይግዙ\n" +
			"3️⃣ ጨዋታው እስኪጀመር ይጠብቁ\n" +
			"4️⃣ በየ 3-4 ሰከንድ የሚጠሩት ቁጥሮች እያዩ፣ ካርቴላ ላይ ምልክት ያርጉ\n" +
			"5️⃣ ሲስተሙ በራሱ(automatically) ውጤቶትን ቼክ በማድረግ አሸናፊውን ያሳውቃል!\n\n" +
			"6 የተጫወቱትን/የገዙትን የጌም ታሪክ (history) ላይ በመግባት ውጤቶን ማየት ይችላሉ!\n\n" +
			"🏆 **የተወሰኑ ማሸነፊያ ፓተርኖች:**\n" +
			"• ሙሉ ዝግ እና ግማሽ ዝግ\n" +
			"• 1 እና ከ 1 በላይ መስመሮች (አግድም, ቁመት, ሰያፍ)\n" +
			"• ከስተም ፓተርኖች\n\n" +
			"💰 **ሽልማቶች:**\n ባሉት ተጫዋቾች ላይ የተመሰረተ እና ሲስተሙ በሚያዘጋጀው ትልቅ ደራሽ",
		Buttons: [][]model.Button{
			{model.NewWebAppButton("🚀 አሁን ይጫውቱ", b.WebAppURL)},
			{model.NewCallbackButton("🔙 ይመለሱ", "main_menu")},
		},
	}
}

func (b *BotFacade) HandleQuickRules(ctx context.Context, tgID, chatID int64) Reply {
	b.track(ctx, tgID, chatID, "", "")
	return Reply{
		Text: "⚡ *QUICK START GUIDE*\n\n" +
			"1️⃣ Buy bingo cards\n" +
			"2️⃣ Wait for game start\n" +
			"3️⃣ Mark called numbers\n" +
			"4️⃣ Complete patterns to win!\n\n" +
			"🎯 *Ready to play?*",
		Buttons: [][]model.Button{
			{model.NewWebAppButton("🚀 Launch Game", b.WebAppURL)},
		},
	}
}

func (b *BotFacade) HandleSupport(ctx context.Context, tgID, chatID int64, firstName string) Reply {
	b.track(ctx, tgID, chatID, firstName, "")
	name := firstName
	if name == "" {
		name = "Player"
	}
	return Reply{
		Text: "💬 *HAGERE BINGO SUPPORT*\n\n" +
			fmt.Sprintf("ልንረደዎት ዝግጁ ነን %s:\n\n", name) +
			fmt.Sprintf("📧 **ቴሌግራም:** %s \n", b.SupportURL) +
			"⏰ **Response Time:** Within 24 hours\n" +
			"**ጥያቄዎች:**\n" +
			"• ክፍያን በተመለከተ\n" +
			"• ጌም ላይ ሚገኙ ችግሮች ወይም ማስተካከያዎች\n" +
			"• ከ አካውንት ጋር በተያያዘ\n" +
			"• ማንኛውም ሃሳብ እና አስተያየት",
		Buttons: [][]model.Button{
			{model.NewURLButton("💬 Join Support Group", b.SupportURL)},
			{model.NewCallbackButton("🔙 ተመለስ", "main_menu")},
		},
	}
}

func (b *BotFacade) HandleAbout(ctx context.Context, tgID, chatID int64) Reply {
	b.track(ctx, tgID, chatID, "", "")
	return Reply{
		Text: "ℹ️ *ABOUT HAGERE BINGO*\n\n" +
			"🎯 **The Ultimate Online Bingo Experience**\n\n" +
			"🌟 **Features:**\n" +
			"• Live multiplayer games\n" +
			"• Real money prizes\n" +
			"• Multiple game variations\n" +
			"• Secure payments\n" +
			"• 24/7 customer support\n\n" +
			"🏆 **Why Choose Hagere Bingo?**\n" +
			"✅ Licensed and regulated\n" +
			"✅ Fast payouts\n" +
			"✅ Fair gameplay\n" +
			"✅ Mobile optimized\n\n" +
			"🎮 **Version:** 2.0\n" +
			"🌐 **Website:** hagere-online.com",
		Buttons: [][]model.Button{
			{model.NewWebAppButton("🚀 ወደ ጨዋታ ይሂዱ", b.WebAppURL)},
			{model.NewURLButton("🌐 ወደ ዌብ ሳይት ይውጡ", b.WebAppURL)},
		},
	}
}

func (b *BotFacade) HandleBonuses(ctx context.Context, tgID, chatID int64) Reply {
	b.track(ctx, tgID, chatID, "", "")
	return Reply{
		Text: "🎁 *AVAILABLE BONUSES*\n\n" +
			"🆕 **እንኳን ደህና መጡ ቦነስ:** የ10 ብር ጌም ክሬዲት\n" +
			"🎯 **1 መስመር ከ10 ጥሪ በታች:** 100 ብር\n" +
			"🎯 **2 መስመር ከ18 ጥሪ በታች:** 100 ብር\n" +
			"🎯 **ግማሽ ዝግ ከ28 ጥሪ በታች:** 100 ብር\n" +
			"🎯 **ሙሉ ዝግ ከ52 ጥሪ በታች:** 100 ብር\n",
		Buttons: [][]model.Button{
			{model.NewCallbackButton("🔙 ተመለስ", "main_menu")},
		},
	}
}

// HandleContact runs phone verification when a player shares their own
// contact card. Contacts forwarded for someone else are ignored.
func (b *BotFacade) HandleContact(ctx context.Context, tgID, chatID, contactOwnerID int64, phone string) Reply {
	if contactOwnerID != tgID {
		return Reply{}
	}
	u, err := b.UserUC.Verify(ctx, tgID, chatID, phone)
	if err != nil {
		return Reply{Text: "❌ Verification failed. Please try again."}
	}
	text := "✅ ስልክ ቁጥርዎ ተረጋግጧል! Welcome aboard, " + u.DisplayName() + "!"
	if u.ReferralCode != "" {
		text += fmt.Sprintf("\n🎁 Referral %s recorded.", u.ReferralCode)
	}
	return Reply{Text: text, Buttons: b.mainMenuButtons()}
}

func (b *BotFacade) unauthorized() Reply {
	return Reply{Text: "❌ Unauthorized. This command is for administrators only."}
}

func (b *BotFacade) adminPanelButtons() [][]model.Button {
	return [][]model.Button{
		{model.NewCallbackButton("📢 Create Broadcast", "admin_broadcast")},
		{model.NewCallbackButton("📊 View Statistics", "admin_stats")},
		{model.NewWebAppButton("🌐 Open Web Panel", b.AdminPanelURL)},
	}
}

// HandleAdminPanel gates first; a denied caller gets the refusal and
// nothing else happens.
func (b *BotFacade) HandleAdminPanel(ctx context.Context, tgID int64, edit bool) Reply {
	if !b.Gate.IsAdmin(tgID) {
		return b.unauthorized()
	}
	return Reply{
		Text: "👨‍💼 *ADMIN PANEL*\n\n" +
			"Welcome, Admin! Choose an option:\n\n" +
			"📢 *Broadcast* - Send messages to all users\n" +
			"📊 *Stats* - View bot statistics\n" +
			"🌐 *Web Panel* - Open full admin panel",
		Buttons: b.adminPanelButtons(),
		Edit:    edit,
	}
}

func (b *BotFacade) HandleAdminBroadcastPrompt(ctx context.Context, tgID int64) Reply {
	if !b.Gate.IsAdmin(tgID) {
		return b.unauthorized()
	}
	return Reply{
		Text: "📢 *CREATE BROADCAST*\n\n" +
			"Use the web panel for the best experience creating broadcasts with images, text, and custom buttons.\n\n" +
			"🌐 Click below to open the admin panel:",
		Buttons: [][]model.Button{
			{model.NewWebAppButton("🌐 Open Broadcast Creator", b.AdminPanelURL)},
			{model.NewCallbackButton("🔙 Back", "admin_panel")},
		},
	}
}

// HandleStats answers the /stats command and the admin_stats callback.
// Non-admins get an empty reply: the command does not exist for them.
func (b *BotFacade) HandleStats(ctx context.Context, tgID int64) Reply {
	if !b.Gate.IsAdmin(tgID) {
		return Reply{}
	}
	stats, err := b.StatsUC.Snapshot(ctx)
	if err != nil {
		return Reply{Text: "❌ Failed to load statistics."}
	}
	return Reply{
		Text: fmt.Sprintf("📊 *BOT STATISTICS*\n\n"+
			"👥 Total Users: %d\n"+
			"✅ Active (7 days): %d\n"+
			"📅 Generated: %s",
			stats.TotalUsers, stats.ActiveUsers, stats.TakenAt.Format(time.RFC1123)),
		Buttons: [][]model.Button{
			{model.NewCallbackButton("🔙 Back", "admin_panel")},
		},
	}
}

// broadcastSubmission is the admin panel's mini-app payload.
type broadcastSubmission struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Image   string `json:"image"`
	Buttons []struct {
		Text     string `json:"text"`
		URL      string `json:"url"`
		WebApp   string `json:"webApp"`
		Callback string `json:"callback"`
	} `json:"buttons"`
}

// HandleWebAppData parses a broadcast submission, stages it, and offers
// a preview with a confirm button carrying only the staged id.
func (b *BotFacade) HandleWebAppData(ctx context.Context, tgID, chatID int64, payload string) Reply {
	if !b.Gate.IsAdmin(tgID) {
		return Reply{Text: "❌ Unauthorized access."}
	}

	var sub broadcastSubmission
	if err := json.Unmarshal([]byte(payload), &sub); err != nil {
		return Reply{Text: "❌ Error processing broadcast data."}
	}
	if sub.Type != "broadcast" {
		return Reply{}
	}

	draft := &model.Broadcast{Text: sub.Text, ImageRef: sub.Image}
	for _, btn := range sub.Buttons {
		draft.Buttons = append(draft.Buttons, model.Button{
			Label:         btn.Text,
			URL:           btn.URL,
			WebAppURL:     btn.WebApp,
			CallbackToken: btn.Callback,
		})
	}

	id, err := b.BroadcastUC.Stage(ctx, draft)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyBroadcast) || errors.Is(err, domain.ErrInvalidButton) {
			return Reply{Text: "❌ Error processing broadcast data."}
		}
		return Reply{Text: "❌ Failed to stage broadcast. Please try again."}
	}

	shape := "Text only"
	if draft.HasImage() {
		shape = "Image + Text"
	}
	return Reply{
		Text: "📢 *BROADCAST PREVIEW*\n\n" +
			"Ready to send your message to all users?\n\n" +
			"Target: All bot users\n" +
			fmt.Sprintf("Message type: %s\n", shape) +
			fmt.Sprintf("Buttons: %d", len(draft.Buttons)),
		Buttons: [][]model.Button{
			{model.NewCallbackButton("✅ Send Broadcast", ConfirmCallbackPrefix+id)},
			{model.NewCallbackButton("❌ Cancel", "admin_panel")},
		},
	}
}

// HandleBroadcastConfirm resolves a confirm-button press. The send loop
// runs on the broadcast worker; the pressed message is rewritten so the
// button cannot fire twice from a stale keyboard.
func (b *BotFacade) HandleBroadcastConfirm(ctx context.Context, tgID, chatID int64, token string) Reply {
	if !b.Gate.IsAdmin(tgID) {
		return Reply{Text: "❌ Unauthorized."}
	}
	id := strings.TrimPrefix(token, ConfirmCallbackPrefix)
	if id == "" || id == token {
		return Reply{Text: "❌ Error executing broadcast."}
	}
	if _, err := b.BroadcastUC.Fetch(ctx, id); err != nil {
		return Reply{Text: "❌ Broadcast not found or expired.", Edit: true}
	}
	if err := b.BroadcastUC.Enqueue(id, chatID); err != nil {
		return Reply{Text: "❌ Error executing broadcast."}
	}
	return Reply{Text: "📤 Broadcast confirmed! Sending now...", Edit: true}
}
