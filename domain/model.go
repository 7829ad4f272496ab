package domain

import (
	"encoding/json"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID              primitive.ObjectID   `bson:"_id" json:"id"`
	Username        string               `bson:"username" json:"username"`
	Email           string               `bson:"email" json:"email"`
	Password        string               `bson:"password" json:"-"`
	Wishlist        []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	ResetCode       string               `bson:"resetOtp" json:"-"`
	ResetCodeExpiry int64                `bson:"resetOtpExpireAt" json:"-"`
	Bookings        []Booking            `bson:"bookings" json:"bookings"`
}

// HasActiveResetCode reports whether a reset code was issued and not yet
// consumed. An empty code with a zero expiry means no active code.
func (u *User) HasActiveResetCode() bool {
	return u.ResetCode != "" && u.ResetCodeExpiry != 0
}

type Booking struct {
	Listing     primitive.ObjectID `bson:"listing" json:"listing"`
	DateRange   DateRange          `bson:"dateRange" json:"dateRange"`
	PaymentInfo PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
}

type DateRange struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

type PaymentInfo struct {
	OrderID   string `bson:"orderId" json:"orderId"`
	PaymentID string `bson:"paymentId" json:"paymentId"`
	Status    string `bson:"status" json:"status"`
}

const PaymentStatusSuccess = "Success"

type Listing struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Location    string               `bson:"location" json:"location"`
	Country     string               `bson:"country" json:"country"`
	Price       float64              `bson:"price" json:"price"`
	Category    string               `bson:"category" json:"category"`
	Image       Image                `bson:"image" json:"image"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Reviews     []primitive.ObjectID `bson:"reviews" json:"reviews"`
}

type Image struct {
	URL      string `bson:"url" json:"url"`
	Filename string `bson:"filename" json:"filename"`
}

type Review struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Rating  int                `bson:"rating" json:"rating"`
	Comment string             `bson:"comment" json:"comment"`
	Author  primitive.ObjectID `bson:"author" json:"author"`
}

// PopulatedReview is a review with its author resolved. Reviews whose
// author document is gone keep a nil Author.
type PopulatedReview struct {
	Review Review `json:"review"`
	Author *User  `json:"author,omitempty"`
}

// PopulatedListing is the show-page read model: owner and reviews resolved,
// dangling references already skipped.
type PopulatedListing struct {
	Listing  Listing           `json:"listing"`
	Owner    *User             `json:"owner,omitempty"`
	Reviews  []PopulatedReview `json:"reviews"`
	IsBooked bool              `json:"isBooked"`
}

// Trip is a booking with its listing resolved for the booked-trips page.
type Trip struct {
	Booking Booking `json:"booking"`
	Listing Listing `json:"listing"`
}

func (u *User) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(u)
}

func (u *User) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(u)
}

func (o *Listing) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}

func (o *Listing) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(o)
}

func (o *Review) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}

func (o *Review) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(o)
}
