package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

const maxPhoneLength = 32

// Usecases groups everything the bot talks to.
type Usecases struct {
	fx.In

	User     usecase.UserUsecase
	Catalog  usecase.CatalogUsecase
	Discount usecase.DiscountUsecase
	Cart     usecase.CartUsecase
	Favorite usecase.FavoriteUsecase
	Order    usecase.OrderUsecase
	QRCodes  service.QRCodeService
}

// Handler turns updates into usecase calls and replies.
type Handler struct {
	uc     Usecases
	client Client
	logger *slog.Logger
}

// NewHandler is the constructor for Handler.
func NewHandler(uc Usecases, client Client, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, client: client, logger: logger}
}

// HandleUpdate routes one update. Failures are reported to the chat and logged, never returned.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	requestID := uuid.NewString()
	logger := h.logger.With(slog.String("request_id", requestID), slog.Int("update_id", update.UpdateID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, logger)

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, logger, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, logger, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	user, err := h.ensureUser(ctx, msg.From)
	if err != nil {
		h.fail(logger, chatID, err)

		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		err = h.start(ctx, logger, chatID, user, args)
	case "catalog":
		err = h.showCatalog(ctx, chatID)
	case "cart":
		err = h.showCart(ctx, chatID, user)
	case "orders":
		err = h.showOrders(ctx, chatID, user)
	case "favorites":
		err = h.showFavorites(ctx, chatID, user)
	case "discounts":
		err = h.showDiscounts(ctx, chatID)
	case "profile":
		err = h.send(chatID, profileText(user), nil)
	case "phone":
		err = h.setPhone(ctx, chatID, user, args)
	case "name":
		err = h.setName(ctx, chatID, user, args)
	default:
		menu := mainMenu()
		err = h.send(chatID, helpText, &menu)
	}
	if err != nil {
		h.fail(logger, chatID, err)
	}
}

func (h *Handler) handleCallback(ctx context.Context, logger *slog.Logger, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}
	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}

	notice, err := h.routeCallback(ctx, chatID, query)
	if _, answerErr := h.client.Request(tgbotapi.NewCallback(query.ID, notice)); answerErr != nil {
		logger.Warn("[Bot] Failed to answer callback", slog.Any("error", answerErr))
	}
	if err != nil {
		h.fail(logger, chatID, err)
	}
}

// routeCallback returns the short notice shown on the pressed button.
func (h *Handler) routeCallback(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, error) {
	action, id, err := parseCallback(query.Data)
	if err != nil {
		return "Unknown action", nil
	}

	user, err := h.ensureUser(ctx, query.From)
	if err != nil {
		return "", err
	}

	switch action {
	case actionCatalog:
		return "", h.showCatalog(ctx, chatID)
	case actionCategory:
		return "", h.showCategory(ctx, chatID, id)
	case actionProduct:
		return "", h.showProduct(ctx, chatID, id)
	case actionAddToCart:
		cart, err := h.uc.Cart.AddItem(ctx, user.ID, id, 1)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Added to cart, total %s", money(cart.Total)), nil
	case actionFavorite:
		added, err := h.uc.Favorite.Toggle(ctx, user.ID, id)
		if err != nil {
			return "", err
		}
		if added {
			return "Added to favorites", nil
		}

		return "Removed from favorites", nil
	case actionCart:
		return "", h.showCart(ctx, chatID, user)
	case actionCartClear:
		if err := h.uc.Cart.Clear(ctx, user.ID); err != nil {
			return "", err
		}

		return "Cart cleared", h.send(chatID, "Your cart is empty.", nil)
	case actionCheckout:
		return "", h.checkout(ctx, chatID, user)
	case actionOrders:
		return "", h.showOrders(ctx, chatID, user)
	case actionRepeat:
		order, err := h.uc.Order.RepeatOrder(ctx, user.ID, id)
		if err != nil {
			return "", err
		}

		return "Order repeated", h.send(chatID, orderText(order)+"\n\nThe order was placed again.", nil)
	case actionFavorites:
		return "", h.showFavorites(ctx, chatID, user)
	case actionDiscounts:
		return "", h.showDiscounts(ctx, chatID)
	default:
		return "Unknown action", nil
	}
}

func (h *Handler) ensureUser(ctx context.Context, from *tgbotapi.User) (*entity.User, error) {
	return h.uc.User.EnsureTelegramUser(ctx, &entity.TelegramProfile{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	})
}

// start opens the product of a QR deep link, or greets the customer.
func (h *Handler) start(ctx context.Context, logger *slog.Logger, chatID int64, user *entity.User, payload string) error {
	if payload != "" {
		productID, err := h.uc.QRCodes.ParseStartPayload(payload)
		if err == nil {
			return h.showProduct(ctx, chatID, productID)
		}
		logger.Info("[Bot] Ignoring start payload", slog.String("payload", payload), slog.Any("error", err))
	}

	name := user.FirstName
	if name == "" {
		name = "there"
	}
	menu := mainMenu()

	return h.send(chatID, fmt.Sprintf("Hello, %s! Welcome to the fireworks shop.\n\n%s", html.EscapeString(name), helpText), &menu)
}

func (h *Handler) showCatalog(ctx context.Context, chatID int64) error {
	categories, err := h.uc.Catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return h.send(chatID, "The catalog is empty for now.", nil)
	}

	keyboard := categoriesKeyboard(categories)

	return h.send(chatID, "Choose a category:", &keyboard)
}

func (h *Handler) showCategory(ctx context.Context, chatID int64, categoryID uuid.UUID) error {
	category, err := h.uc.Catalog.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}

	list, err := h.uc.Catalog.ListProducts(ctx, usecase.ProductListInput{
		CategoryID: &categoryID,
		Page:       usecase.Page{Limit: listLimit},
	})
	if err != nil {
		return err
	}
	if len(list.Products) == 0 {
		return h.send(chatID, "No products in "+html.EscapeString(category.Name)+" yet.", nil)
	}

	keyboard := productsKeyboard(list.Products, actionCatalog)

	return h.send(chatID, "<b>"+html.EscapeString(category.Name)+"</b>", &keyboard)
}

// showProduct sends the product card, with its photo when one is stored.
func (h *Handler) showProduct(ctx context.Context, chatID int64, productID uuid.UUID) error {
	product, err := h.uc.Catalog.GetProduct(ctx, productID, false)
	if err != nil {
		return err
	}

	text := productText(product)
	keyboard := productKeyboard(product)
	if product.ImageKey == nil {
		return h.send(chatID, text, &keyboard)
	}

	image, err := h.uc.Catalog.GetImage(ctx, *product.ImageKey)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Warn("[Bot] Product image unavailable",
			slog.Any("productID", product.ID),
			slog.Any("error", err),
		)

		return h.send(chatID, text, &keyboard)
	}

	if utf8.RuneCountInString(text) > maxCaptionLength {
		if err := h.sendPhoto(chatID, image, "<b>"+html.EscapeString(product.Name)+"</b>", nil); err != nil {
			return err
		}

		return h.send(chatID, text, &keyboard)
	}

	return h.sendPhoto(chatID, image, text, &keyboard)
}

func (h *Handler) showCart(ctx context.Context, chatID int64, user *entity.User) error {
	cart, err := h.uc.Cart.GetCart(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		menu := mainMenu()

		return h.send(chatID, "Your cart is empty.", &menu)
	}

	keyboard := cartKeyboard()

	return h.send(chatID, cartText(cart), &keyboard)
}

// checkout places the order with the profile contact data; an operator confirms the address by phone.
func (h *Handler) checkout(ctx context.Context, chatID int64, user *entity.User) error {
	if user.Phone == "" {
		return h.send(chatID, "Please set a phone number first, for example: /phone +79991234567", nil)
	}

	order, err := h.uc.Order.CreateOrder(ctx, user.ID, usecase.OrderContactInput{
		FIO:          user.FullName(),
		Phone:        user.Phone,
		OperatorCall: true,
	})
	if err != nil {
		return err
	}

	return h.send(chatID, orderText(order)+"\n\nThank you! An operator will call you to confirm the delivery.", nil)
}

func (h *Handler) showOrders(ctx context.Context, chatID int64, user *entity.User) error {
	list, err := h.uc.Order.ListOrders(ctx, usecase.Actor{UserID: user.ID}, usecase.OrderListInput{
		Page: usecase.Page{Limit: ordersLimit},
	})
	if err != nil {
		return err
	}
	if len(list.Orders) == 0 {
		return h.send(chatID, "You have no orders yet.", nil)
	}

	texts := make([]string, 0, len(list.Orders))
	for _, order := range list.Orders {
		texts = append(texts, orderText(order))
	}
	keyboard := ordersKeyboard(list.Orders)

	return h.send(chatID, strings.Join(texts, "\n\n"), &keyboard)
}

func (h *Handler) showFavorites(ctx context.Context, chatID int64, user *entity.User) error {
	favorites, err := h.uc.Favorite.List(ctx, user.ID)
	if err != nil {
		return err
	}

	products := make([]*entity.Product, 0, len(favorites))
	for _, favorite := range favorites {
		if favorite.Product != nil {
			products = append(products, favorite.Product)
		}
	}
	if len(products) == 0 {
		return h.send(chatID, "You have no favorites yet.", nil)
	}

	keyboard := productsKeyboard(products, "")

	return h.send(chatID, "<b>Favorites</b>", &keyboard)
}

func (h *Handler) showDiscounts(ctx context.Context, chatID int64) error {
	discounts, err := h.uc.Discount.ListRunning(ctx)
	if err != nil {
		return err
	}
	if len(discounts) == 0 {
		return h.send(chatID, "No promotions are running right now.", nil)
	}

	texts := make([]string, 0, len(discounts))
	for _, discount := range discounts {
		texts = append(texts, discountText(discount))
	}

	return h.send(chatID, strings.Join(texts, "\n\n"), nil)
}

func (h *Handler) setPhone(ctx context.Context, chatID int64, user *entity.User, phone string) error {
	if phone == "" || utf8.RuneCountInString(phone) > maxPhoneLength {
		return h.send(chatID, "Usage: /phone +79991234567", nil)
	}

	updated, err := h.uc.User.UpdateProfile(ctx, user.ID, usecase.UpdateProfileInput{Phone: &phone})
	if err != nil {
		return err
	}

	return h.send(chatID, "Phone saved: "+html.EscapeString(updated.Phone), nil)
}

func (h *Handler) setName(ctx context.Context, chatID int64, user *entity.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return h.send(chatID, "Usage: /name Ivan Petrov", nil)
	}

	firstName := fields[0]
	lastName := strings.Join(fields[1:], " ")
	updated, err := h.uc.User.UpdateProfile(ctx, user.ID, usecase.UpdateProfileInput{
		FirstName: &firstName,
		LastName:  &lastName,
	})
	if err != nil {
		return err
	}

	return h.send(chatID, "Name saved: "+html.EscapeString(updated.FullName()), nil)
}

// fail shows client errors as they are and hides everything else behind a retry hint.
func (h *Handler) fail(logger *slog.Logger, chatID int64, err error) {
	text := tryAgainText

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode() < 500 {
		text = html.EscapeString(appErr.Message())
		logger.Info("[Bot] Request rejected", slog.String("code", appErr.ErrorCode()), slog.Any("error", err))
	} else {
		logger.Error("[Bot] Failed to handle update", slog.Any("error", err))
	}

	if sendErr := h.send(chatID, text, nil); sendErr != nil {
		logger.Error("[Bot] Failed to report error", slog.Any("error", sendErr))
	}
}

func (h *Handler) send(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := h.client.Send(msg); err != nil {
		return errors.Wrapf(err, "failed to send message to chat %d", chatID)
	}

	return nil
}

func (h *Handler) sendPhoto(chatID int64, image []byte, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "product.png", Bytes: image})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		photo.ReplyMarkup = *keyboard
	}

	if _, err := h.client.Send(photo); err != nil {
		return errors.Wrapf(err, "failed to send photo to chat %d", chatID)
	}

	return nil
}
