package telegram

import (
	"fmt"
	"html"
	"strings"

	"fireworks/internal/domain/entity"
	"fireworks/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Callback actions. Payloads carrying an id are "<action>:<uuid>".
const (
	actionCatalog   = "catalog"
	actionCategory  = "cat"
	actionProduct   = "prod"
	actionAddToCart = "add"
	actionFavorite  = "fav"
	actionCart      = "cart"
	actionCartClear = "cart_clear"
	actionCheckout  = "checkout"
	actionOrders    = "orders"
	actionRepeat    = "repeat"
	actionFavorites = "favorites"
	actionDiscounts = "discounts"
)

const (
	// Telegram caps photo captions at 1024 characters.
	maxCaptionLength = 1024
	listLimit        = 50
	ordersLimit      = 10
)

const (
	helpText = "Commands:\n" +
		"/catalog - browse the catalog\n" +
		"/cart - your cart\n" +
		"/orders - your orders\n" +
		"/favorites - saved products\n" +
		"/discounts - running promotions\n" +
		"/profile - your contact data\n" +
		"/phone &lt;number&gt; - set the phone for delivery\n" +
		"/name &lt;first&gt; [last] - set your name"
	tryAgainText = "Something went wrong, please try again later."
)

func callbackData(action string, id uuid.UUID) string {
	return action + ":" + id.String()
}

func parseCallback(data string) (string, uuid.UUID, error) {
	action, raw, hasID := strings.Cut(data, ":")
	if !hasID {
		return action, uuid.Nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return action, uuid.Nil, err
	}

	return action, id, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("Catalog", actionCatalog), button("Cart", actionCart)),
		tgbotapi.NewInlineKeyboardRow(button("Orders", actionOrders), button("Favorites", actionFavorites)),
		tgbotapi.NewInlineKeyboardRow(button("Discounts", actionDiscounts)),
	)
}

func categoriesKeyboard(categories []*entity.Category) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for _, category := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(category.Name, callbackData(actionCategory, category.ID))))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productsKeyboard(products []*entity.Product, back string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products)+1)
	for _, product := range products {
		label := fmt.Sprintf("%s - %s", product.Name, money(product.Price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(label, callbackData(actionProduct, product.ID))))
	}
	if back != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Back", back)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productKeyboard(product *entity.Product) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("Add to cart", callbackData(actionAddToCart, product.ID)),
			button("Favorite", callbackData(actionFavorite, product.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(button("Back", callbackData(actionCategory, product.CategoryID))),
	)
}

func productText(product *entity.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\nPrice: %s", html.EscapeString(product.Name), money(product.Price))
	if len(product.Tags) > 0 {
		names := make([]string, 0, len(product.Tags))
		for _, tag := range product.Tags {
			names = append(names, "#"+html.EscapeString(tag.Name))
		}
		b.WriteString("\n" + strings.Join(names, " "))
	}
	if product.Description != "" {
		b.WriteString("\n\n" + html.EscapeString(product.Description))
	}

	return b.String()
}

func cartText(cart *usecase.CartOutput) string {
	var b strings.Builder
	b.WriteString("<b>Your cart</b>\n")
	for _, item := range cart.Items {
		name := "Unavailable product"
		if item.Product != nil {
			name = item.Product.Name
		}
		fmt.Fprintf(&b, "\n%s x %d = %s", html.EscapeString(name), item.Amount, money(item.Subtotal()))
	}
	fmt.Fprintf(&b, "\n\nTotal: <b>%s</b>", money(cart.Total))

	return b.String()
}

func cartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("Checkout", actionCheckout), button("Clear", actionCartClear)),
		tgbotapi.NewInlineKeyboardRow(button("Catalog", actionCatalog)),
	)
}

func orderText(order *entity.Order) string {
	status := fmt.Sprintf("#%d", order.StatusID)
	if order.Status != nil {
		status = order.Status.Text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Order %s</b> (%s)", shortID(order.ID), html.EscapeString(status))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "\n%s x %d = %s", html.EscapeString(item.ProductName), item.Amount, money(item.Subtotal()))
	}
	fmt.Fprintf(&b, "\nTotal: <b>%s</b>", money(order.Total))

	return b.String()
}

func ordersKeyboard(orders []*entity.Order) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Repeat "+shortID(order.ID), callbackData(actionRepeat, order.ID))))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func discountText(discount *entity.Discount) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>", html.EscapeString(discount.Title))
	if discount.Description != "" {
		b.WriteString("\n" + html.EscapeString(discount.Description))
	}
	if discount.EndsAt != nil {
		fmt.Fprintf(&b, "\nUntil %s", discount.EndsAt.Format("02.01.2006"))
	}

	return b.String()
}

func profileText(user *entity.User) string {
	name := user.FullName()
	if name == "" {
		name = "not set"
	}
	phone := user.Phone
	if phone == "" {
		phone = "not set"
	}
	verified := "no"
	if user.AgeVerified {
		verified = "yes"
	}

	return fmt.Sprintf("<b>Profile</b>\nName: %s\nPhone: %s\nAge verified: %s\n\n/phone and /name update your data.",
		html.EscapeString(name), html.EscapeString(phone), verified)
}
