// Package transport adapts session outcomes to a chat messenger: prompt
// texts, captions, and the send-or-edit delivery of render images.
package transport

import (
	"fmt"
	"strings"

	"canvasbot/internal/domain"
	"canvasbot/internal/session"
)

// Messages are HTML-formatted for messengers that support it.
const (
	msgNoPending    = "Все поля уже заполнены. Нажмите «Подтвердить» или «Отменить»."
	msgNoMatch      = "Не удалось применить сообщение к оставшимся полям."
	msgPreview      = "Предпросмотр готов. Подтвердить?"
	msgFinal        = "Готово! Ваше изображение."
	msgCancelled    = "Создание отменено."
	msgRenderFailed = "Не удалось собрать изображение. Попробуйте ещё раз."
)

// PromptRemaining builds the re-prompt listing the unfilled slots, photos
// first, in the order the queue will consume them.
func PromptRemaining(remaining []session.Entry) string {
	var photos, texts []string
	for _, e := range remaining {
		switch e.Kind {
		case session.SlotPhoto:
			photos = append(photos, "<b>"+e.SlotName+"</b>")
		case session.SlotText:
			texts = append(texts, "<b>"+e.SlotName+"</b>")
		}
	}

	var b strings.Builder
	b.WriteString("Пожалуйста, отправьте ")
	if len(photos) > 0 {
		fmt.Fprintf(&b, "%d фото (%s)", len(photos), strings.Join(photos, ", "))
	}
	if len(photos) > 0 && len(texts) > 0 {
		b.WriteString(" и ")
	}
	if len(texts) > 0 {
		fmt.Fprintf(&b, "%d текст(%s)", len(texts), strings.Join(texts, ", "))
	}
	b.WriteString(".\nМожно отправлять одним или несколькими сообщениями, в любом порядке.")
	return b.String()
}

// TemplateCaption builds the gallery caption for a template card.
func TemplateCaption(title, description string, index, total int) string {
	lines := []string{"<b>" + title + "</b>"}
	if description != "" {
		lines = append(lines, "<i>"+description+"</i>")
	}
	lines = append(lines, fmt.Sprintf("<code>%d / %d</code>", index, total))
	return strings.Join(lines, "\n")
}

// OutcomeText returns the message body for a non-image outcome, or the
// caption for an image one.
func OutcomeText(out *session.Outcome) string {
	switch out.Kind {
	case session.OutcomeReprompt:
		return PromptRemaining(out.Remaining)
	case session.OutcomeNoMatch:
		return msgNoMatch + "\n" + PromptRemaining(out.Remaining)
	case session.OutcomeNoPending:
		return msgNoPending
	case session.OutcomePreview:
		return msgPreview
	case session.OutcomeFinal:
		return msgFinal
	case session.OutcomeCancelled:
		return msgCancelled
	case session.OutcomeRenderFailed:
		return msgRenderFailed
	default:
		return ""
	}
}

// MapInbound converts raw chat input to the session's inbound form. The
// caption rides along with the photo so one message can fill two slots.
func MapInbound(photo []byte, text string) session.Inbound {
	return session.Inbound{Photo: photo, Text: strings.TrimSpace(text)}
}

// StatusLabel is the user-facing name of a session state.
func StatusLabel(status domain.CanvasStatus) string {
	switch status {
	case domain.CanvasCollecting:
		return "заполнение"
	case domain.CanvasPreviewing:
		return "предпросмотр"
	case domain.CanvasConfirmed:
		return "готово"
	case domain.CanvasCancelled:
		return "отменено"
	default:
		return string(status)
	}
}
