package web

const pageHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>今天看啥 - 豆瓣想看随机推荐</title>
    <meta name="description" content="从你的豆瓣想看、想读列表中随机推荐几部作品，帮你解决选择困难症">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, system-ui, 'PingFang SC', sans-serif; background: #f3f4f6; color: #1f2937; min-height: 100vh; padding: 2rem; }
        main { max-width: 56rem; margin: 0 auto; }
        h1 { font-size: 1.875rem; text-align: center; margin-bottom: 1.5rem; }
        .tabs { display: flex; justify-content: center; gap: 0.5rem; margin-bottom: 1.5rem; }
        .tabs button { padding: 0.5rem 1.25rem; border: 1px solid #d1d5db; border-radius: 9999px; background: #fff; cursor: pointer; }
        .tabs button.active { background: #3b82f6; border-color: #3b82f6; color: #fff; }
        form { display: flex; justify-content: center; margin-bottom: 2rem; }
        form input { padding: 0.5rem 1rem; border: 1px solid #d1d5db; border-radius: 0.5rem 0 0 0.5rem; min-width: 16rem; }
        form button { padding: 0.5rem 1rem; border: none; border-radius: 0 0.5rem 0.5rem 0; background: #3b82f6; color: #fff; cursor: pointer; }
        form button:disabled { background: #93c5fd; }
        .error { color: #ef4444; text-align: center; margin-bottom: 1rem; }
        .card { display: flex; background: #fff; border-radius: 0.5rem; box-shadow: 0 4px 12px rgba(0,0,0,0.08); overflow: hidden; margin-bottom: 1.5rem; color: inherit; text-decoration: none; transition: box-shadow 0.2s; }
        .card:hover { box-shadow: 0 8px 24px rgba(0,0,0,0.12); }
        .card img { width: 12rem; height: 18rem; object-fit: cover; flex-shrink: 0; background: #e5e7eb; }
        .card .body { padding: 1.5rem; flex: 1; }
        .card .title { font-size: 1.25rem; font-weight: 600; display: flex; align-items: center; gap: 0.5rem; }
        .card .alias { margin-top: 0.25rem; font-size: 0.875rem; color: #6b7280; }
        .card .meta { margin-top: 1rem; font-size: 0.875rem; color: #4b5563; }
        .card .meta div { margin-bottom: 0.5rem; }
        .card .meta b { font-weight: 600; }
        .playable { width: 1.5rem; height: 1.5rem; color: #3b82f6; }
    </style>
</head>
<body>
<main>
    <h1>豆瓣随机推荐</h1>
    <div class="tabs">
        <button type="button" data-tab="movies">想看的电影</button>
        <button type="button" data-tab="books">想读的书</button>
    </div>
    <form id="pick">
        <input id="userId" type="text" placeholder="请输入豆瓣用户ID" required>
        <button id="submit" type="submit">获取推荐</button>
    </form>
    <div id="error" class="error" hidden></div>
    <div id="results"></div>
</main>
<script>
const USER_KEY = 'doubanUserId';
const TAB_KEY = 'doubanTab';
const PLAY_ICON = '<svg class="playable" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path fill-rule="evenodd" d="M4.5 5.653c0-1.426 1.529-2.33 2.779-1.643l11.54 6.348c1.295.712 1.295 2.573 0 3.285L7.28 19.991c-1.25.687-2.779-.217-2.779-1.643V5.653z" clip-rule="evenodd"/></svg>';

const input = document.getElementById('userId');
const submit = document.getElementById('submit');
const errorBox = document.getElementById('error');
const results = document.getElementById('results');
let tab = localStorage.getItem(TAB_KEY) === 'books' ? 'books' : 'movies';

function esc(s) {
    return String(s || '').replace(/[&<>"']/g, c => ({'&': '&amp;', '<': '&lt;', '>': '&gt;', '"': '&quot;', "'": '&#39;'}[c]));
}

function line(label, value) {
    return value ? '<div><b>' + label + '：</b>' + esc(value) + '</div>' : '';
}

function card(item) {
    const cover = item.pic ? '/api/image?url=' + encodeURIComponent(item.pic) : '';
    let meta;
    let extra = '';
    if (tab === 'movies') {
        extra = item.titleAlias ? '<div class="alias">' + esc(item.titleAlias) + '</div>' : '';
        meta = line('片长', item.duration) + line('年份', item.year) + line('评分', item.rating) + line('标记时间', item.addedAt);
    } else {
        meta = line('作者', item.author) + line('出版社', item.publisher) + line('年份', item.year) + line('标记时间', item.addedAt);
    }
    return '<a class="card" target="_blank" rel="noopener noreferrer" href="' + esc(item.link) + '">' +
        '<img alt="' + esc(item.title) + '" src="' + esc(cover) + '">' +
        '<div class="body"><div class="title">' + esc(item.title) + (item.playable ? PLAY_ICON : '') + '</div>' +
        extra + '<div class="meta">' + meta + '</div></div></a>';
}

function selectTab(next) {
    tab = next;
    localStorage.setItem(TAB_KEY, tab);
    document.querySelectorAll('.tabs button').forEach(b => b.classList.toggle('active', b.dataset.tab === tab));
    results.innerHTML = '';
}

async function pick() {
    const userId = input.value.trim();
    if (!userId) return;
    submit.disabled = true;
    submit.textContent = '加载中...';
    errorBox.hidden = true;
    try {
        const resp = await fetch('/api/' + tab + '?userId=' + encodeURIComponent(userId));
        const data = await resp.json();
        if (!resp.ok) throw new Error(data.error || '获取推荐失败');
        localStorage.setItem(USER_KEY, userId);
        results.innerHTML = data.map(card).join('');
    } catch (err) {
        errorBox.textContent = err.message || '获取推荐失败';
        errorBox.hidden = false;
    } finally {
        submit.disabled = false;
        submit.textContent = '获取推荐';
    }
}

document.querySelectorAll('.tabs button').forEach(b => b.addEventListener('click', () => {
    selectTab(b.dataset.tab);
    pick();
}));
input.addEventListener('input', () => localStorage.setItem(USER_KEY, input.value));
document.getElementById('pick').addEventListener('submit', e => { e.preventDefault(); pick(); });

selectTab(tab);
const saved = localStorage.getItem(USER_KEY);
if (saved) {
    input.value = saved;
    pick();
}
</script>
</body>
</html>`
