package mailer

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
)

type Sender interface {
	Send(to, subject, text string) (string, error)
}

type mailSender struct {
	APIKey     string
	URL        string
	From       string
	HTTPClient http.Client
}

func NewSender(apiKey, apiURL, from string) Sender {
	return &mailSender{
		APIKey: apiKey,
		URL:    fmt.Sprintf("%s/messages", apiURL),
		From:   from,
	}
}

func (s *mailSender) Send(to, subject, text string) (string, error) {
	v := url.Values{}
	v.Set("to", to)
	v.Set("from", s.From)
	v.Set("subject", subject)
	v.Set("text", text)

	statusCode, id, err := s.post(v)
	if err != nil {
		return "", fmt.Errorf("send: error sending mail: status code: %d: err: %s", statusCode, err)
	}
	return *id, nil
}

func (s *mailSender) post(values url.Values) (*int, *string, error) {
	req, err := http.NewRequest(http.MethodPost, s.URL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, nil, err
	}

	req.SetBasicAuth("api", s.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		bodyBytes, err := ioutil.ReadAll(res.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("post: error reading mail body: %s", err)
		}

		var data map[string]interface{}
		err = json.Unmarshal(bodyBytes, &data)
		if err != nil {
			return nil, nil, fmt.Errorf("post: error unmarshalling response body: %s", err)
		}

		id, _ := data["id"].(string)
		return &res.StatusCode, &id, nil
	}

	return &res.StatusCode, nil, fmt.Errorf("post: error making post request: status: %d", res.StatusCode)
}
