package model

// All lists every model in migration order.
func All() []any {
	return []any{
		&UserModel{},
		&CategoryModel{},
		&TagModel{},
		&ProductModel{},
		&ProductTagModel{},
		&DiscountModel{},
		&CartItemModel{},
		&FavoriteModel{},
		&AddressModel{},
		&OrderStatusModel{},
		&OrderModel{},
		&OrderLineItemModel{},
		&NewsletterModel{},
		&NewsletterTagModel{},
	}
}
