package controlplane

import (
	"fmt"
	"strconv"

	"github.com/iudanet/bundlegate/internal/models"
)

// mainMenuMarkup возвращает reply-клавиатуру главного меню
func mainMenuMarkup() *Markup {
	return &Markup{
		Reply: [][]string{
			{buttonApplications},
			{buttonLogout},
		},
	}
}

// removeReplyMarkup убирает reply-клавиатуру
func removeReplyMarkup() *Markup {
	return &Markup{RemoveReply: true}
}

// bundleDetailMarkup строит клавиатуру карточки приложения: переключатель
// разрешения, удаление и возврат к списку
func bundleDetailMarkup(bundleID string, allowed bool) *Markup {
	var toggle Button
	if allowed {
		toggle = Button{Text: buttonBlock, CallbackData: actionBlockBundle + "@" + bundleID}
	} else {
		toggle = Button{Text: buttonAllow, CallbackData: actionAllowBundle + "@" + bundleID}
	}

	return &Markup{
		Inline: [][]Button{
			{toggle},
			{{Text: buttonRemove, CallbackData: actionRemoveBundle + "@" + bundleID}},
			{{Text: buttonApplications, CallbackData: actionViewApps + "@0"}},
		},
	}
}

// bundleListMarkup строит клавиатуру страницы списка: по кнопке на
// приложение и строку пагинации [назад][номер страницы][вперед].
// Недоступные стрелки показываются как ❌ и повторяют текущую страницу,
// чтобы нажатие на них было безвредным no-op.
func bundleListMarkup(bundles []models.Bundle, page, pages int) *Markup {
	rows := make([][]Button, 0, len(bundles)+1)
	for _, b := range bundles {
		status := "❌"
		if b.AllowExecution {
			status = "✅"
		}
		rows = append(rows, []Button{{
			Text:         fmt.Sprintf("%s - %s", status, b.BundleID),
			CallbackData: actionControlBundle + "@" + b.BundleID,
		}})
	}

	prev := Button{Text: "❌", CallbackData: pageCallback(page)}
	if page > 0 {
		prev = Button{Text: "⬅️", CallbackData: pageCallback(page - 1)}
	}

	next := Button{Text: "❌", CallbackData: pageCallback(page)}
	if page < pages-1 {
		next = Button{Text: "➡️", CallbackData: pageCallback(page + 1)}
	}

	current := Button{Text: strconv.Itoa(page + 1), CallbackData: pageCallback(page)}

	rows = append(rows, []Button{prev, current, next})

	return &Markup{Inline: rows}
}

func pageCallback(page int) string {
	return fmt.Sprintf("%s@%d", actionViewApps, page)
}
