package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// sendSMS posts a message to the SMS gateway. The booking flow treats SMS as a
// best-effort side channel, so callers are expected to log failures and move on.
func sendSMS(message string, recipients []string) error {
	username := os.Getenv("SMS_USERNAME")
	apiKey := os.Getenv("SMS_API_KEY")

	if username == "" || apiKey == "" {
		return fmt.Errorf("SMS gateway credentials not set")
	}

	baseURL := os.Getenv("SMS_API_URL")
	if baseURL == "" {
		baseURL = "https://api.africastalking.com/version1/messaging"
	}

	data := url.Values{}
	data.Set("username", username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequest("POST", baseURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", apiKey)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}

	return nil
}

// SendSeatBookedSMS tells a ride creator that a passenger reserved a seat.
func SendSeatBookedSMS(creatorPhone, passengerName, destination string) error {
	msg := fmt.Sprintf("%s has booked a seat on your ride to %s. Open the app to see your passenger list.",
		passengerName, destination)

	return sendSMS(msg, []string{creatorPhone})
}

// SendRideCanceledSMS tells a passenger that a ride they joined was canceled.
func SendRideCanceledSMS(passengerPhone, destination string) error {
	msg := fmt.Sprintf("Your ride to %s has been canceled by the creator. Please search for another ride.",
		destination)

	return sendSMS(msg, []string{passengerPhone})
}
