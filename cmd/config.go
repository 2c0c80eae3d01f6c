package cmd

type Config struct {
	HTTPPort                string
	DBHost                  string
	DBPort                  string
	DBUser                  string
	DBPassword              string
	DBName                  string
	DBSslMode               string
	KafkaHost               string
	KafkaNotificationTopic  string
	RedisAddr               string
	WebhookSecrets          map[string]string
	DeliveryFee             int64
	CheckoutRedirectBaseURL string
}
