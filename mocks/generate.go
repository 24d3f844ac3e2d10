package mocks

//go:generate mockgen -destination=./mock_starter.go -package=mocks github.com/joshua1code/Q-bot-FD/internal/session Starter
//go:generate mockgen -destination=./mock_connector.go -package=mocks github.com/joshua1code/Q-bot-FD/internal/session Connector
