package request

// CheckoutRequest is the purchase intent for one seat. Buyer field bounds
// mirror the public reservation form.
type CheckoutRequest struct {
	SlotID     string `json:"slot_id" validate:"required,uuid4"`
	BuyerName  string `json:"buyer_name" validate:"required,min=2,max=100"`
	BuyerEmail string `json:"buyer_email" validate:"required,email"`
	BuyerPhone string `json:"buyer_phone" validate:"required,min=10,max=20"`
}
