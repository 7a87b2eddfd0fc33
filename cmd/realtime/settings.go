package main

type Settings struct {
	Port           int      `env:"PORT,default=8000"`
	BasePath       string   `env:"BASE_PATH,default=/realtime"`
	JWTSecret      string   `env:"JWT_SECRET,required=true"`
	APIKeys        []string `env:"API_KEYS"`
	MongoDBURI     string   `env:"MONGODB_URI,default=mongodb://localhost:27017"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`
	LogEncoding    string   `env:"LOG_ENCODING,default=console"`
}
