package fsm

const (
	StateRegIdle = "reg_idle"

	// Registration collection states are built from the questionnaire
	// config as awaiting_<question id>; see registrationState.
	AwaitingStatePrefix = "awaiting_"
)

const (
	StateAskIdle = "ask_idle"
	StateAsking  = "asking"
)

const (
	EventStartRegistration = "start_registration"
	EventAnswerAccepted    = "answer_accepted"
	EventRegistrationDone  = "registration_done"
	EventForceExit         = "force_exit"
)

const (
	EventEnterAskMode  = "enter_ask_mode"
	EventCancelAskMode = "cancel_ask_mode"
)

const (
	CallbackAnswerPrefix = "answer:"
)

const (
	CommandStart  = "start"
	CommandAsk    = "ask"
	CommandCancel = "cancel"
)

const (
	MsgRegistrationSaved  = "Спасибо за регистрацию! Чтобы задавать вопросы напишите /ask."
	MsgRegistrationFailed = "Не удалось сохранить регистрацию. Попробуйте позже."
	MsgRegistrationReset  = "Регистрация прервана. Отправьте /start, чтобы начать заново."

	MsgAskModeEntered = "Вы можете задавать вопросы. Напишите /cancel, чтобы выйти."

	MsgFinishRegistrationFirst = "Сначала завершите регистрацию. Отправьте /cancel, чтобы прервать её."
	MsgAskModeLeft    = "Вы вышли из режима вопросов."
	MsgUnknownCommand = "Неизвестная команда."
	MsgFallback       = "Я не понимаю, что вы хотите. Чтобы задать вопрос, нажмите кнопку ниже или введите /ask."

	MsgNoHandle          = "⚠ У вас нет username в Telegram. Установите его в настройках и попробуйте снова."
	MsgNotRegistered     = "❌ Вы не зарегистрированы. Введите /start для регистрации."
	MsgUsersUnavailable  = "⚠ Ошибка: База данных пользователей не найдена."
	MsgInternalError     = "Произошла внутренняя ошибка. Пожалуйста, попробуйте позже или обратитесь к администратору."
	MsgModelUnavailable  = "Не удалось получить ответ. Попробуйте задать вопрос позже."
	MsgExpertEscalation  = "Данный вопрос требует помощи эксперта, скоро вернусь."
	MsgNoExpertFound     = "Не удалось найти подходящего эксперта."
	MsgNoFieldOnRecord   = "Не удалось найти подходящую область интересов для пользователя."
	MsgRosterUnavailable = "⚠ Ошибка: База экспертов не найдена."
	MsgRatingPrompt      = "Оцените, пожалуйста, работу бота от 1 до 10:"
)

const ratingPromptThreshold = 5
