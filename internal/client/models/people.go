package models

import (
	"strings"
	"time"
)

// Member is a registered member or a pending membership request.
type Member struct {
	ID           ID     `json:"id"`
	FirstName    string `json:"firstName"`
	MiddleName   string `json:"middleName,omitempty"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	Location     string `json:"location"`
	Age          int    `json:"age"`
	Nationality  string `json:"nationality"`
	MemberNumber string `json:"memberNumber,omitempty"`
	Status       string `json:"status,omitempty"`
}

func (m Member) Key() string { return string(m.ID) }

func (m Member) FullName() string {
	return strings.Join(strings.Fields(m.FirstName+" "+m.MiddleName+" "+m.LastName), " ")
}

type Volunteer struct {
	ID          ID     `json:"id"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	Event       string `json:"event"`
}

func (v Volunteer) Key() string { return string(v.ID) }

// Partner is a partnership request from an organization.
type Partner struct {
	ID                   ID     `json:"id"`
	OrganizationName     string `json:"organizationName"`
	Email                string `json:"email"`
	Website              string `json:"website"`
	ContactNumber        string `json:"contactNumber"`
	Location             string `json:"location"`
	OrganizationType     string `json:"organizationType"`
	ReasonForPartnership string `json:"reasonForPartnership"`
}

func (p Partner) Key() string { return string(p.ID) }

// User is a console account.
type User struct {
	ID        ID        `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) Key() string { return string(u.ID) }
