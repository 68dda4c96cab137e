package apiclient

// PendingRefreshWaiters returns the number of requests queued on the refresh in flight
func (c *Client) PendingRefreshWaiters() int {
	return c.flight.Pending()
}
