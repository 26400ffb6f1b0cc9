// Package telegram connects the voice pipeline to a Telegram bot.
//
// The Bot is a component: Start authenticates against the Bot API, Listen
// begins long polling, and Stop stops intake and drains in-flight runs.
// Voice messages are dispatched to a Processor on a bounded worker pool;
// /start replies with a greeting. Bot also resolves Telegram file ids to
// download URLs, so it serves as the pipeline's message source.
package telegram
