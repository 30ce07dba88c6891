package models

import "time"

// DefaultPhonePrefix pre-fills the phone number of a new donation.
const DefaultPhonePrefix = "254"

type Donation struct {
	TransactionID      ID        `json:"transactionId"`
	FullName           string    `json:"fullName"`
	PhoneNumber        string    `json:"phoneNumber"`
	Amount             float64   `json:"amount"`
	MpesaReceiptNumber string    `json:"mpesaReceiptNumber"`
	CreatedAt          time.Time `json:"createdAt"`
}

type DonationForm struct {
	FullName           string  `json:"fullName" validate:"required" label:"Full name"`
	PhoneNumber        string  `json:"phoneNumber" validate:"required,numeric" label:"Phone number"`
	Amount             float64 `json:"amount" validate:"gt=0" label:"Amount"`
	MpesaReceiptNumber string  `json:"mpesaReceiptNumber" validate:"required,receipt" label:"Mpesa Receipt Number"`
}

// NewDonationForm returns an empty form with the phone prefix filled in.
func NewDonationForm() DonationForm {
	return DonationForm{PhoneNumber: DefaultPhonePrefix}
}

type DonationRange struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02" label:"Start date"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02" label:"End date"`
}
