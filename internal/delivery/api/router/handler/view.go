package handler

import (
	"time"

	"fireworks/internal/domain/entity"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// imagePathPrefix is where GetImage is mounted.
const imagePathPrefix = "/api/v1/images/"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func imageURL(key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	url := imagePathPrefix + *key

	return &url
}

// UserView is the public representation of a user.
type UserView struct {
	ID          uuid.UUID `json:"id"`
	TelegramID  *int64    `json:"telegram_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Email       *string   `json:"email,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	AgeVerified bool      `json:"age_verified"`
	IsAdmin     bool      `json:"is_admin"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUserView(u *entity.User) *UserView {
	if u == nil {
		return nil
	}

	return &UserView{
		ID:          u.ID,
		TelegramID:  u.TelegramID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Email:       u.Email,
		IsVerified:  u.IsVerified,
		AgeVerified: u.AgeVerified,
		IsAdmin:     u.IsAdmin,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}

// TokenView is returned by every login flow.
type TokenView struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	User         *UserView `json:"user,omitempty"`
}

func newTokenView(output *usecase.TokenOutput) *TokenView {
	return &TokenView{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    output.ExpiresIn,
		User:         newUserView(output.User),
	}
}

// CategoryView is the public representation of a category.
type CategoryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
}

func newCategoryView(c *entity.Category) *CategoryView {
	return &CategoryView{ID: c.ID, Name: c.Name, Description: c.Description, SortOrder: c.SortOrder}
}

// TagView is the public representation of a tag.
type TagView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func newTagView(t *entity.Tag) *TagView {
	return &TagView{ID: t.ID, Name: t.Name}
}

// ProductView is the public representation of a product.
type ProductView struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       string     `json:"price"`
	ImageURL    *string    `json:"image_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	Tags        []*TagView `json:"tags"`
}

func newProductView(p *entity.Product) *ProductView {
	if p == nil {
		return nil
	}

	return &ProductView{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		ImageURL:    imageURL(p.ImageKey),
		IsActive:    p.IsActive,
		Tags:        mapViews(p.Tags, newTagView),
	}
}

// DiscountView is the public representation of a promotion.
type DiscountView struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    *string    `json:"image_url,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	IsActive    bool       `json:"is_active"`
}

func newDiscountView(d *entity.Discount) *DiscountView {
	return &DiscountView{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		ImageURL:    imageURL(d.ImageKey),
		StartsAt:    d.StartsAt,
		EndsAt:      d.EndsAt,
		IsActive:    d.IsActive,
	}
}

// CartItemView is one cart row with the current product data.
type CartItemView struct {
	ProductID uuid.UUID    `json:"product_id"`
	Amount    int          `json:"amount"`
	Subtotal  string       `json:"subtotal"`
	Product   *ProductView `json:"product,omitempty"`
}

// CartView is the whole cart.
type CartView struct {
	Items []*CartItemView `json:"items"`
	Total string          `json:"total"`
}

func newCartView(cart *usecase.CartOutput) *CartView {
	return &CartView{
		Items: mapViews(cart.Items, func(item *entity.CartItem) *CartItemView {
			return &CartItemView{
				ProductID: item.ProductID,
				Amount:    item.Amount,
				Subtotal:  money(item.Subtotal()),
				Product:   newProductView(item.Product),
			}
		}),
		Total: money(cart.Total),
	}
}

// FavoriteView is a favorited product.
type FavoriteView struct {
	ID        uuid.UUID    `json:"id"`
	ProductID uuid.UUID    `json:"product_id"`
	Product   *ProductView `json:"product,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

func newFavoriteView(f *entity.Favorite) *FavoriteView {
	return &FavoriteView{ID: f.ID, ProductID: f.ProductID, Product: newProductView(f.Product), CreatedAt: f.CreatedAt}
}

// AddressView is a saved delivery address.
type AddressView struct {
	ID          uuid.UUID `json:"id"`
	Label       string    `json:"label"`
	FullAddress string    `json:"full_address"`
	Comment     string    `json:"comment"`
}

func newAddressView(a *entity.Address) *AddressView {
	if a == nil {
		return nil
	}

	return &AddressView{ID: a.ID, Label: a.Label, FullAddress: a.FullAddress, Comment: a.Comment}
}

// OrderItemView is a line item with its frozen price.
type OrderItemView struct {
	ID           uuid.UUID  `json:"id"`
	ProductID    *uuid.UUID `json:"product_id"`
	ProductName  string     `json:"product_name"`
	Amount       int        `json:"amount"`
	PricePerUnit string     `json:"price_per_unit"`
	Subtotal     string     `json:"subtotal"`
}

// OrderStatusView is a row of the status dictionary.
type OrderStatusView struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func newOrderStatusView(s *entity.OrderStatus) *OrderStatusView {
	if s == nil {
		return nil
	}

	return &OrderStatusView{ID: s.ID, Text: s.Text}
}

// OrderView is a placed order with its line items.
type OrderView struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Status       *OrderStatusView `json:"status"`
	AddressID    *uuid.UUID       `json:"address_id"`
	Address      *AddressView     `json:"address,omitempty"`
	FIO          string           `json:"fio"`
	Phone        string           `json:"phone"`
	OperatorCall bool             `json:"operator_call"`
	Total        string           `json:"total"`
	Items        []*OrderItemView `json:"items"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func newOrderView(o *entity.Order) *OrderView {
	status := newOrderStatusView(o.Status)
	if status == nil {
		status = &OrderStatusView{ID: o.StatusID}
	}

	return &OrderView{
		ID:           o.ID,
		UserID:       o.UserID,
		Status:       status,
		AddressID:    o.AddressID,
		Address:      newAddressView(o.Address),
		FIO:          o.FIO,
		Phone:        o.Phone,
		OperatorCall: o.OperatorCall,
		Total:        money(o.Total),
		Items: mapViews(o.Items, func(item *entity.OrderLineItem) *OrderItemView {
			return &OrderItemView{
				ID:           item.ID,
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				Amount:       item.Amount,
				PricePerUnit: money(item.PricePerUnit),
				Subtotal:     money(item.Subtotal()),
			}
		}),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// NewsletterView is a newsletter with its targeting and delivery state.
type NewsletterView struct {
	ID                uuid.UUID          `json:"id"`
	Title             string             `json:"title"`
	Content           string             `json:"content"`
	ImageURL          *string            `json:"image_url,omitempty"`
	AgeVerified       bool               `json:"age_verified"`
	AccountAge        *entity.AccountAge `json:"account_age"`
	NumberOfOrders    int                `json:"number_of_orders"`
	UsersRelatedToTag bool               `json:"users_related_to_tag"`
	Tags              []*TagView         `json:"tags"`
	SendAt            time.Time          `json:"send_at"`
	IsSent            bool               `json:"is_sent"`
	IsCanceled        bool               `json:"is_canceled"`
	SentAt            *time.Time         `json:"sent_at,omitempty"`
	SentCount         int                `json:"sent_count"`
	FailedCount       int                `json:"failed_count"`
	CreatedAt         time.Time          `json:"created_at"`
}

func newNewsletterView(n *entity.Newsletter) *NewsletterView {
	return &NewsletterView{
		ID:                n.ID,
		Title:             n.Title,
		Content:           n.Content,
		ImageURL:          imageURL(n.ImageKey),
		AgeVerified:       n.AgeVerified,
		AccountAge:        n.AccountAge,
		NumberOfOrders:    n.NumberOfOrders,
		UsersRelatedToTag: n.UsersRelatedToTag,
		Tags:              mapViews(n.Tags, newTagView),
		SendAt:            n.SendAt,
		IsSent:            n.IsSent,
		IsCanceled:        n.IsCanceled,
		SentAt:            n.SentAt,
		SentCount:         n.SentCount,
		FailedCount:       n.FailedCount,
		CreatedAt:         n.CreatedAt,
	}
}

// AudiencePreviewView shows how many users a newsletter would reach.
type AudiencePreviewView struct {
	Count  int64       `json:"count"`
	Sample []*UserView `json:"sample"`
}

func mapViews[E any, V any](items []*E, fn func(*E) *V) []*V {
	views := make([]*V, 0, len(items))
	for _, item := range items {
		views = append(views, fn(item))
	}

	return views
}
