package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"salon-admin-cli/model"
)

// SearchCustomers looks up saved customers by name, email or phone. An empty
// query lists customers through the plain view endpoint instead.
func (c *Client) SearchCustomers(ctx context.Context, token string, search string, page int) (model.CustomerList, error) {
	if token == "" {
		return model.CustomerList{}, errors.New("auth token is required")
	}
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(defaultPerPage))
	query.Set("sort_by", "name")

	path := customerViewPath
	if search = strings.TrimSpace(search); search != "" {
		path = customerSearchPath
		query.Set("search", search)
	}

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	var result model.CustomersPage
	if err := c.getJSON(ctx, endpoint, token, &result); err != nil {
		return model.CustomerList{}, err
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "failed to fetch customers"
		}
		return model.CustomerList{}, errors.New(msg)
	}
	return result.Data.Customers, nil
}

// ListSalonTimes fetches the configured weekly opening hours.
func (c *Client) ListSalonTimes(ctx context.Context, token string) ([]model.SalonTime, error) {
	if token == "" {
		return nil, errors.New("auth token is required")
	}
	query := url.Values{}
	query.Set("page", "1")
	query.Set("per_page", "50")

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, salonTimesPath, query.Encode())
	var result model.SalonTimesPage
	if err := c.getJSON(ctx, endpoint, token, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}
