package config

import (
	"github.com/spf13/viper"
)

const (
	DBURL = "database.mysql"

	StripeSecretKey  = "stripe.secret_key"
	StripeWebhookKey = "stripe.webhook_secret"
	SuccessURL       = "stripe.success_url"
	CancelURL        = "stripe.cancel_url"
	Currency         = "stripe.currency"

	MailerAPIKey = "mailer.api_key"
	MailerURL    = "mailer.url"
	MailerFrom   = "mailer.from"

	Port   = "server.port"
	Secret = "server.secret"

	RedisAddress  = "redis.address"
	RedisPassword = "redis.password"
	RedisDB       = "redis.db"

	RateLimitWindow = "ratelimit.window_seconds"
	RateLimitMax    = "ratelimit.max_requests"
)

func init() {
	viper.AutomaticEnv()
	viper.SetDefault(Port, ":9000")
	viper.SetDefault(Currency, "usd")
	viper.SetDefault(RateLimitWindow, 60)
	viper.SetDefault(RateLimitMax, 120)
}
