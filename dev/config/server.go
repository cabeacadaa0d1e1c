package config

// SERVER_YML is written to dev/config/server.yml when the server starts in
// dev mode without one.
const SERVER_YML = `
crm:
  listener:
    port: 3000
    readTimeout: 5s
    writeTimeout: 10s
    shutdownTimeout: 5s
  cors:
    allowedOrigins:
      - "http://localhost:3001"
  maxRequestBodySize: 1048576

sqlite:
  passPhrase: passphrase

google:
  applicationCredentials:
  storage:
    bucket: "minicrm"
    prefix: "minicrm-dev"
`

// DEFAULT_CLIENT_YML is written to ~/.minicrm.yaml on first use.
const DEFAULT_CLIENT_YML = `# Where the minicrm server is listening
api:
  url: "http://localhost:3000/api/v1"
  timeout: 10s

# Only needed to add follow-ups to your google calendar
secrets:
  GOOGLE_APPLICATION_CREDENTIALS: <Path to the JSON file of your google OAuth client>
`
