package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/psds-microservice/support-bot/internal/errs"
	"github.com/psds-microservice/support-bot/internal/model"
	"github.com/psds-microservice/support-bot/internal/telegram"
)

// Тексты бота. Пользовательские — на узбекском.
const (
	textStart = "Assalomu alaykum! Support botga xush kelibsiz.\n" +
		"Siz bu bot orqali muammoingizni yozing — adminlar bilan bogʻlanasiz."
	textInquiryForwarded = "✅ So‘rovingiz adminga yuborildi. Javobni shu yerda kuting."
	textNoSession        = "ℹ️ Javob berish uchun ✉️ Reply tugmasini bosing."
	textTicketNotFound   = "⚠️ Ticket topilmadi."
	textInternalError    = "⚠️ Ichki xatolik. Birozdan so‘ng qayta urinib ko‘ring."
)

const replyCallbackPrefix = "reply_"

// renderInquiryNotification строит HTML-уведомление для админов. Имя,
// username и текст экранируются, текст оборачивается в <pre>, чтобы разметка
// из пользовательского сообщения не интерпретировалась.
func renderInquiryNotification(t *model.Ticket, text string) string {
	safeName := html.EscapeString(orDash(t.UserName))
	safeUsername := html.EscapeString(orDash(t.UserUsername))
	safeText := html.EscapeString(text)
	return fmt.Sprintf(
		"🎫 <b>TicketID:</b> %d\n"+
			"<b>From:</b> %s (@%s)\n"+
			"<b>UserID:</b> %d\n\n"+
			"<b>Xabar:</b>\n<pre>%s</pre>",
		t.ID, safeName, safeUsername, t.UserID, safeText,
	)
}

func renderReplyPrompt(ticketID uint64) string {
	return fmt.Sprintf("✏️ Endi Ticket #%d uchun foydalanuvchiga javob yozing.", ticketID)
}

func renderAdminReply(ticketID uint64, text string) string {
	return fmt.Sprintf("👨‍💼 Admin javobi (Ticket #%d):\n\n%s", ticketID, text)
}

func renderReplySent(ticketID uint64) string {
	return fmt.Sprintf("✅ Javob foydalanuvchiga yuborildi (Ticket #%d).", ticketID)
}

func renderReplySentStoreFailed(ticketID uint64) string {
	return fmt.Sprintf("⚠️ Javob foydalanuvchiga yuborildi, lekin Ticket #%d holatini saqlashda xatolik yuz berdi.", ticketID)
}

func renderIDReply(userID, chatID int64) string {
	return fmt.Sprintf("Your user.id = %d\nThis chat.id = %d", userID, chatID)
}

// replyButton — inline-кнопка "Reply" с id тикета в payload.
func replyButton(ticketID uint64) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "✉️ Reply", CallbackData: replyCallbackPrefix + strconv.FormatUint(ticketID, 10)},
		}},
	}
}

// parseReplyCallback разбирает payload вида "reply_42".
func parseReplyCallback(data string) (uint64, error) {
	suffix, ok := strings.CutPrefix(data, replyCallbackPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrMalformedCallback, data)
	}
	id, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errs.ErrMalformedCallback, data)
	}
	return id, nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
