// Package presence 維護「使用者目前透過哪一條連線在線」的行程內狀態。
//
// Registry 對每位使用者最多保存一條連線，後註冊者覆蓋先註冊者。
// 移除時必須比對連線，過期的斷線通知不會把較新的連線踢掉。
package presence
