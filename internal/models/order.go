package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type OrderItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type AddressInfo struct {
	AddressID string `json:"addressId,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Pincode   string `json:"pincode"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes,omitempty"`
}

type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Items           []OrderItem   `json:"items"`
	AddressInfo     AddressInfo   `json:"addressInfo"`
	OrderStatus     OrderStatus   `json:"orderStatus"`
	PaymentMethod   string        `json:"paymentMethod"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	TotalAmount     float64       `json:"totalAmount"`
	OrderDate       time.Time     `json:"orderDate"`
	OrderUpdateDate time.Time     `json:"orderUpdateDate"`
	PaymentID       string        `json:"paymentId,omitempty"`
	PayerID         string        `json:"payerId,omitempty"`
}
