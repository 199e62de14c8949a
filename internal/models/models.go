package models

import "time"

// Animal is an adoptable animal as reported by the search API.
type Animal struct {
	ID             int64        `json:"id"`
	OrganizationID string       `json:"organization_id,omitempty"`
	URL            string       `json:"url,omitempty"`
	Type           string       `json:"type,omitempty"`
	Species        string       `json:"species,omitempty"`
	Breeds         Breeds       `json:"breeds"`
	Colors         Colors       `json:"colors"`
	Age            string       `json:"age,omitempty"`
	Gender         string       `json:"gender,omitempty"`
	Size           string       `json:"size,omitempty"`
	Coat           string       `json:"coat,omitempty"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	Status         string       `json:"status,omitempty"`
	PublishedAt    *time.Time   `json:"published_at,omitempty"`
	Photos         []Photo      `json:"photos,omitempty"`
	Distance       *float64     `json:"distance"`
	Contact        Contact      `json:"contact"`
	Environment    *Environment `json:"environment,omitempty"`
}

// Breeds lists the primary and secondary breed of an animal.
type Breeds struct {
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
	Mixed     bool   `json:"mixed"`
	Unknown   bool   `json:"unknown"`
}

// Colors lists up to three coat colors.
type Colors struct {
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
	Tertiary  string `json:"tertiary,omitempty"`
}

// Environment reports compatibility with children and other animals. Nil
// fields mean the shelter did not say.
type Environment struct {
	Children *bool `json:"children"`
	Dogs     *bool `json:"dogs"`
	Cats     *bool `json:"cats"`
}

// Photo holds the renditions of one animal photo.
type Photo struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
	Full   string `json:"full,omitempty"`
}

// Contact is the shelter contact for an animal or organization.
type Contact struct {
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}

// Address is a postal address as reported upstream.
type Address struct {
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Pagination is the paging metadata returned with a search page.
type Pagination struct {
	CountPerPage int `json:"count_per_page"`
	TotalCount   int `json:"total_count"`
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
}

// AnimalPage is one page of search results. Pagination is nil when the
// upstream omitted it.
type AnimalPage struct {
	Animals    []Animal    `json:"animals"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Organization is an animal welfare organization.
type Organization struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone,omitempty"`
	Website string  `json:"website,omitempty"`
	URL     string  `json:"url,omitempty"`
	Address Address `json:"address"`
}

// Coordinate is a WGS 84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
