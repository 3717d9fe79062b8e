package V1

import (
	"demo/serve"
	"net/http"

	"github.com/labstack/echo/v4"
)

type IndexHander struct {
}

func NewIndexHander(s *serve.HttpServer) *IndexHander {
	s.Echo.GET("/", Index)
	return &IndexHander{}
}

// Index 浏览器端：两个 video 叠在一起，语音识别和朗读用 Web Speech API
func Index(c echo.Context) error {
	return c.HTML(http.StatusOK, index)
}

const index = `<!DOCTYPE html>
<html lang="ja">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>R69</title>
  <style>
    body { margin: 0; background: #111; color: #eee; font-family: sans-serif; }
    #stage { position: relative; width: 100vw; height: 70vh; overflow: hidden; }
    #stage video { position: absolute; inset: 0; width: 100%; height: 100%; object-fit: contain; opacity: 0; }
    #stage video.visible { opacity: 1; }
    #panel { padding: 12px; }
    #answer { min-height: 3em; margin: 8px 0; white-space: pre-wrap; }
    #status { font-size: 12px; color: #8a8; }
    #form { display: flex; gap: 8px; }
    #text { flex: 1; }
  </style>
</head>
<body>
  <div id="stage">
    <video id="v0" playsinline muted preload="auto"></video>
    <video id="v1" playsinline muted preload="auto"></video>
  </div>
  <div id="panel">
    <div id="status">接続中...</div>
    <div id="answer"></div>
    <form id="form">
      <input id="text" autocomplete="off" placeholder="メッセージ" />
      <button type="submit">送信</button>
      <button type="button" id="mic">🎙️</button>
    </form>
  </div>

  <script>
    const videos = [document.getElementById("v0"), document.getElementById("v1")];
    const clipOf = ["", ""];
    const token = [0, 0];
    let networkPhrase = "通信エラーが発生しました";
    const statusDiv = document.getElementById("status");
    const answerDiv = document.getElementById("answer");
    let ws;

    function send(msg) {
      if (ws && ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
    }

    function load(i, clip, url, loop, seq) {
      const v = videos[i];
      const t = token[i] = seq;
      clipOf[i] = clip;
      v.loop = !!loop;
      v.oncanplay = () => {
        v.oncanplay = null;
        if (t === token[i]) send({ type: "ready", surface: i, clip: clip, seq: t });
      };
      v.onerror = () => {
        if (t === token[i]) send({ type: "media_error", surface: i, clip: clip, seq: t, error: v.error ? String(v.error.code) : "load" });
      };
      v.src = url;
      v.load();
    }

    function play(i) {
      const v = videos[i];
      const clip = clipOf[i];
      const t = token[i];
      v.play()
        .then(() => { if (t === token[i]) send({ type: "playing", surface: i, clip: clip, seq: t }); })
        .catch((e) => { if (t === token[i]) send({ type: "media_error", surface: i, clip: clip, seq: t, error: String(e) }); });
    }

    videos.forEach((v, i) => {
      v.addEventListener("ended", () => send({ type: "ended", surface: i, clip: clipOf[i], seq: token[i] }));
    });

    function speak(text) {
      if (!("speechSynthesis" in window)) {
        send({ type: "speech_start" });
        send({ type: "speech_end" });
        return;
      }
      speechSynthesis.cancel();
      const u = new SpeechSynthesisUtterance(text);
      u.lang = "ja-JP";
      u.onstart = () => send({ type: "speech_start" });
      u.onend = () => send({ type: "speech_end" });
      u.onerror = () => send({ type: "speech_end" });
      speechSynthesis.speak(u);
    }

    function connect() {
      const proto = location.protocol === "https:" ? "wss" : "ws";
      ws = new WebSocket(proto + "://" + location.host + "/v1/ws");
      ws.onopen = () => { statusDiv.textContent = "接続しました"; };
      ws.onclose = () => {
        statusDiv.textContent = "切断されました、再接続します...";
        setTimeout(connect, 2000);
      };
      ws.onmessage = (event) => {
        const msg = JSON.parse(event.data);
        const i = msg.surface || 0;
        switch (msg.type) {
          case "clips": if (msg.text) networkPhrase = msg.text; break;
          case "load": load(i, msg.clip, msg.url, msg.loop, msg.seq); break;
          case "play": play(i); break;
          case "pause": videos[i].pause(); break;
          case "loop": videos[i].loop = !!msg.loop; break;
          case "visible": videos[i].classList.toggle("visible", !!msg.visible); break;
          case "speak": speak(msg.text); break;
          case "answer": answerDiv.textContent = msg.text; break;
          case "state": statusDiv.textContent = msg.mode + " / " + msg.state; break;
          case "error": statusDiv.textContent = msg.text; break;
        }
      };
    }

    function submit(text) {
      if (ws && ws.readyState === WebSocket.OPEN) {
        send({ type: "transcript", text: text });
        return;
      }
      statusDiv.textContent = networkPhrase;
      speak(networkPhrase);
    }

    document.getElementById("form").onsubmit = (e) => {
      e.preventDefault();
      const input = document.getElementById("text");
      const text = input.value.trim();
      if (text) submit(text);
      input.value = "";
    };

    const Recognition = window.SpeechRecognition || window.webkitSpeechRecognition;
    const micBtn = document.getElementById("mic");
    if (Recognition) {
      const rec = new Recognition();
      rec.lang = "ja-JP";
      rec.interimResults = false;
      rec.onresult = (e) => {
        submit(e.results[0][0].transcript);
      };
      micBtn.onclick = () => rec.start();
    } else {
      micBtn.disabled = true;
    }

    // 自動再生が止められた場合、最初のタップで待機動画をやり直す
    document.addEventListener("click", () => send({ type: "unlock" }), { once: true });

    connect();
  </script>
</body>
</html>
`
