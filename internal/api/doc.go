// Package api 處理 HTTP 請求路由和處理。
//
// 這個包包含了所有的 HTTP 處理器（handlers）。
// 聊天的 HTTP 路徑與 WebSocket 連線都轉交給同一個 service.ChatService。
package api
